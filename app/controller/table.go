package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-tablelocks/app/dto"
	"github.com/vibast-solutions/ms-go-tablelocks/app/service"
	"github.com/vibast-solutions/ms-go-tablelocks/app/store"
)

type TableController struct {
	tables *service.TableLockService
}

// NewTableController constructs the HTTP table lock controller.
func NewTableController(tables *service.TableLockService) *TableController {
	return &TableController{tables: tables}
}

// Lock acquires an exclusive time-bounded hold on a table.
func (c *TableController) Lock(ctx echo.Context) error {
	req, err := dto.LockFromEchoContext(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request body."})
	}
	if err := req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	switch err := c.tables.Lock(req.TableID, req.UserID, req.TTL()); {
	case err == nil:
		return ctx.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": fmt.Sprintf("Table %s locked successfully.", req.TableID),
		})
	case errors.Is(err, store.ErrAlreadyLocked):
		return ctx.JSON(http.StatusConflict, echo.Map{
			"success": false,
			"message": fmt.Sprintf("Table %s is currently locked by another user.", req.TableID),
		})
	default:
		return err
	}
}

// Unlock releases a table lock held by the requesting user.
func (c *TableController) Unlock(ctx echo.Context) error {
	req, err := dto.UnlockFromEchoContext(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request body."})
	}
	if err := req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	}

	switch err := c.tables.Unlock(req.TableID, req.UserID); {
	case err == nil:
		return ctx.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": fmt.Sprintf("Table %s unlocked successfully.", req.TableID),
		})
	case errors.Is(err, store.ErrNotLocked):
		return ctx.JSON(http.StatusNotFound, echo.Map{
			"success": false,
			"message": fmt.Sprintf("No active lock found for table %s.", req.TableID),
		})
	case errors.Is(err, store.ErrNotOwner):
		return ctx.JSON(http.StatusForbidden, echo.Map{
			"success": false,
			"message": fmt.Sprintf("Table %s is locked by a different user.", req.TableID),
		})
	default:
		return err
	}
}

// Status reports whether a table currently has a live lock.
func (c *TableController) Status(ctx echo.Context) error {
	tableID := ctx.Param("tableId")
	if tableID == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "tableId is required"})
	}

	return ctx.JSON(http.StatusOK, echo.Map{"isLocked": c.tables.Status(tableID)})
}

// ActiveLocks lists every live lock with owner, expiry, and time remaining.
func (c *TableController) ActiveLocks(ctx echo.Context) error {
	locks := c.tables.ActiveLocks()

	active := make(map[string]dto.ActiveLock, len(locks))
	for id, lock := range locks {
		active[id] = dto.ActiveLock{
			UserID:        lock.UserID,
			Expiry:        lock.ExpiresAt.UTC().Format(time.RFC3339),
			TimeRemaining: int64(lock.Remaining.Seconds()),
		}
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"activeLocks":      active,
		"totalActiveLocks": len(active),
	})
}
