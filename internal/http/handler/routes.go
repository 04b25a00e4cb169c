package handler

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"filevault/internal/http/middleware"
	"filevault/internal/model"
	"filevault/internal/service"
)

// Services bundles the core services the HTTP surface dispatches into.
type Services struct {
	Users    service.UserService
	Files    service.FileService
	Folders  service.FolderService
	Shares   service.ShareService
	Search   service.SearchService
	Activity service.ActivityService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

type moveRequest struct {
	FolderID string `json:"folder_id"`
}

type moveFolderRequest struct {
	ParentID string `json:"parent_id"`
}

type shareRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

func parseID(c *fiber.Ctx, param string) (string, error) {
	id := c.Params(param)
	if _, err := uuid.Parse(id); err != nil {
		return "", writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	return id, nil
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic: parse, delegate, translate.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	// Health endpoint: checks DB connectivity only.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Registration happens before an identity exists, so it sits outside
	// the actor-scoped group.
	app.Post("/register", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		user, err := svc.Users.Register(c.UserContext(), req.Username, req.Email, req.Password)
		if err != nil {
			return translateError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	})

	// Everything below acts on behalf of an authenticated principal.
	api := app.Group("/", middleware.Actor())

	api.Get("/me", func(c *fiber.Ctx) error {
		user, err := svc.Users.Get(c.UserContext(), middleware.ActorID(c))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(user)
	})

	api.Get("/me/usage", func(c *fiber.Ctx) error {
		usage, err := svc.Users.Usage(c.UserContext(), middleware.ActorID(c))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(usage)
	})

	api.Get("/me/activity", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		items, err := svc.Activity.Recent(c.UserContext(), middleware.ActorID(c), limit)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(items)
	})

	// Folders.

	api.Get("/folders/root", func(c *fiber.Ctx) error {
		root, err := svc.Folders.Root(c.UserContext(), middleware.ActorID(c))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(root)
	})

	api.Post("/folders", func(c *fiber.Ctx) error {
		var req createFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		folder, err := svc.Folders.Create(c.UserContext(), middleware.ActorID(c), req.Name, req.ParentID)
		if err != nil {
			return translateError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	})

	api.Get("/folders/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		actor := middleware.ActorID(c)
		listing, err := svc.Folders.ListChildren(c.UserContext(), actor, id)
		if err != nil {
			return translateError(c, err)
		}
		breadcrumbs, err := svc.Folders.Breadcrumbs(c.UserContext(), actor, id)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(fiber.Map{
			"folder":      listing.Folder,
			"files":       listing.Files,
			"subfolders":  listing.Subfolders,
			"breadcrumbs": breadcrumbs,
		})
	})

	api.Post("/folders/:id/move", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		var req moveFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		if err := svc.Folders.Move(c.UserContext(), middleware.ActorID(c), id, req.ParentID); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Delete("/folders/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		summary, err := svc.Folders.DeleteCascade(c.UserContext(), middleware.ActorID(c), id)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(summary)
	})

	// Files. Literal routes come before /files/:id.

	api.Post("/files", func(c *fiber.Ctx) error {
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

		stored, err := svc.Files.Upload(c.UserContext(), middleware.ActorID(c), f, fh.Filename, ct, c.FormValue("folder_id"))
		if err != nil {
			return translateError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	})

	api.Get("/files/recent", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "5"))
		files, err := svc.Files.ListRecent(c.UserContext(), middleware.ActorID(c), limit)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(files)
	})

	api.Get("/files/starred", func(c *fiber.Ctx) error {
		files, err := svc.Files.ListStarred(c.UserContext(), middleware.ActorID(c))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(files)
	})

	api.Get("/files/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		file, err := svc.Files.Get(c.UserContext(), middleware.ActorID(c), id)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(file)
	})

	api.Get("/files/:id/download", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		content, err := svc.Files.Download(c.UserContext(), middleware.ActorID(c), id)
		if err != nil {
			return translateError(c, err)
		}
		c.Set(fiber.HeaderContentType, content.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", content.Name))
		return c.Send(content.Data)
	})

	api.Get("/files/:id/preview", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		content, err := svc.Files.Preview(c.UserContext(), middleware.ActorID(c), id)
		if err != nil {
			return translateError(c, err)
		}
		c.Set(fiber.HeaderContentType, content.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", content.Name))
		return c.Send(content.Data)
	})

	api.Post("/files/:id/trash", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Files.Trash(c.UserContext(), middleware.ActorID(c), id); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Post("/files/:id/restore", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Files.Restore(c.UserContext(), middleware.ActorID(c), id); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Post("/files/:id/star", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		starred, err := svc.Files.ToggleStar(c.UserContext(), middleware.ActorID(c), id)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(fiber.Map{"starred": starred})
	})

	api.Post("/files/:id/rename", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		var req nameRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		if err := svc.Files.Rename(c.UserContext(), middleware.ActorID(c), id, req.Name); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Post("/files/:id/move", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		var req moveRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		if err := svc.Files.Move(c.UserContext(), middleware.ActorID(c), id, req.FolderID); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Delete("/files/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Files.PermanentDelete(c.UserContext(), middleware.ActorID(c), id); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Sharing.

	api.Post("/files/:id/shares", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		var req shareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		grant, err := svc.Shares.Share(c.UserContext(), middleware.ActorID(c), id, req.Email, model.Permission(req.Permission))
		if err != nil {
			return translateError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(grant)
	})

	api.Get("/files/:id/shares", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		entries, err := svc.Shares.ListGrants(c.UserContext(), middleware.ActorID(c), id)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(entries)
	})

	api.Delete("/files/:id/shares/:userId", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		granteeID, err := parseID(c, "userId")
		if err != nil {
			return err
		}
		if err := svc.Shares.Unshare(c.UserContext(), middleware.ActorID(c), id, granteeID); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Get("/shared", func(c *fiber.Ctx) error {
		files, err := svc.Shares.SharedWithMe(c.UserContext(), middleware.ActorID(c))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(files)
	})

	api.Delete("/shared/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Shares.RemoveShared(c.UserContext(), middleware.ActorID(c), id); err != nil {
			return translateError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Trash and search.

	api.Get("/trash", func(c *fiber.Ctx) error {
		files, err := svc.Files.ListTrash(c.UserContext(), middleware.ActorID(c))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(files)
	})

	api.Get("/search", func(c *fiber.Ctx) error {
		result, err := svc.Search.Search(c.UserContext(), middleware.ActorID(c), c.Query("query"))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(result)
	})
}
