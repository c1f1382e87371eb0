package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"launchpad/internal/auth"
	"launchpad/internal/service"
)

// ListFiles returns the caller's files with limit & offset.
//
//	@Summary		List own files
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"page size"		default(10)
//	@Param			offset	query		int	false	"page offset"	default(0)
//	@Success		200		{object}	service.FileListResult
//	@Router			/api/files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.IdentityFromCtx(c)
		if id == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), id.Subject, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// UploadFile accepts multipart/form-data with field name "file".
//
//	@Summary		Upload a file
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"file content"
//	@Success		201		{object}	model.File
//	@Router			/api/files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.IdentityFromCtx(c)
		if id == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		file, err := svc.Upload(c.UserContext(), id.Subject, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(file)
	}
}

// GetFile returns one file's metadata. Files owned by other users look
// like they do not exist.
//
//	@Summary		Get file metadata
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"file id"
//	@Success		200	{object}	model.File
//	@Failure		404	{object}	map[string]interface{}
//	@Router			/api/files/{id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authID := auth.IdentityFromCtx(c)
		if authID == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		file, err := svc.Get(c.UserContext(), authID.Subject, id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(file)
	}
}

// DownloadFile streams the file content through the API.
//
//	@Summary		Download file content
//	@Tags			files
//	@Produce		octet-stream
//	@Security		BearerAuth
//	@Param			id	path	string	true	"file id"
//	@Success		200
//	@Failure		404	{object}	map[string]interface{}
//	@Router			/api/files/{id}/download [get]
func DownloadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authID := auth.IdentityFromCtx(c)
		if authID == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, file, err := svc.Download(c.UserContext(), authID.Subject, id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, file.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
		// fasthttp closes the stream after the response is written.
		return c.SendStream(rc, int(file.Size))
	}
}

// FileDownloadURL returns a short-lived presigned URL so clients can
// fetch content directly from object storage.
//
//	@Summary		Presign a file download
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"file id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	map[string]interface{}
//	@Router			/api/files/{id}/url [get]
func FileDownloadURL(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authID := auth.IdentityFromCtx(c)
		if authID == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DownloadURL(c.UserContext(), authID.Subject, id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// DeleteFile removes the file's object and metadata.
//
//	@Summary		Delete a file
//	@Tags			files
//	@Security		BearerAuth
//	@Param			id	path	string	true	"file id"
//	@Success		204
//	@Failure		404	{object}	map[string]interface{}
//	@Router			/api/files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authID := auth.IdentityFromCtx(c)
		if authID == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), authID.Subject, id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
