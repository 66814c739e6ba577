package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/notesapi/internal/middleware"
	"github.com/yourorg/notesapi/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type NotesHandler struct {
	db *sql.DB
}

func NewNotesHandler(db *sql.DB) *NotesHandler {
	return &NotesHandler{db: db}
}

// List handles GET /notes/. Returns the caller's notes ordered by updated_at
// descending, paginated by page/page_size query params.
func (h *NotesHandler) List(c *fiber.Ctx) error {
	ownerID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Authentication credentials were not provided."})
	}

	page, ok := parsePage(c.Query("page"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Invalid page."})
	}
	pageSize := normalizePageSize(c.QueryInt("page_size", defaultPageSize))

	var count int64
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE owner_id = ?`, ownerID).Scan(&count); err != nil {
		log.Printf("❌ Error counting notes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	offset, valid := pageOffset(page, pageSize, count)
	if !valid {
		return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Invalid page."})
	}

	rows, err := h.db.Query(`
		SELECT n.id, n.title, n.content, u.username, n.owner_id, n.created_at, n.updated_at
		FROM notes n
		JOIN users u ON u.id = n.owner_id
		WHERE n.owner_id = ?
		ORDER BY n.updated_at DESC
		LIMIT ? OFFSET ?
	`, ownerID, pageSize, offset)
	if err != nil {
		log.Printf("❌ Error listing notes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Owner, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			continue
		}
		notes = append(notes, n)
	}

	base := c.BaseURL() + c.Path()
	return c.JSON(models.NoteListResponse{
		Count:    count,
		Next:     pageLink(base, page+1, pageSize, count),
		Previous: pageLink(base, page-1, pageSize, count),
		Results:  notes,
	})
}

// Create handles POST /notes/. The owner is always the caller; any
// client-supplied owner field is ignored by construction.
func (h *NotesHandler) Create(c *fiber.Ctx) error {
	ownerID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Authentication credentials were not provided."})
	}

	var req models.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Detail{Detail: "Malformed JSON body"})
	}

	if errs := validateNoteCreate(req); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	content := ""
	if req.Content != nil {
		content = *req.Content
	}

	res, err := h.db.Exec(`
		INSERT INTO notes (title, content, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
	`, *req.Title, content, ownerID)
	if err != nil {
		log.Printf("❌ Error inserting note: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	noteID, _ := res.LastInsertId()
	note, err := h.getNote(ownerID, noteID)
	if err != nil {
		log.Printf("❌ Error reading back note %d: %v", noteID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// Get handles GET /notes/:id/.
func (h *NotesHandler) Get(c *fiber.Ctx) error {
	ownerID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Authentication credentials were not provided."})
	}

	noteID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Not found."})
	}

	note, err := h.getNote(ownerID, int64(noteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Not found."})
		}
		log.Printf("❌ Error fetching note %d: %v", noteID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	return c.JSON(note)
}

// Update handles PUT /notes/:id/ (full replace).
func (h *NotesHandler) Update(c *fiber.Ctx) error {
	return h.update(c, false)
}

// PartialUpdate handles PATCH /notes/:id/ (subset of fields).
func (h *NotesHandler) PartialUpdate(c *fiber.Ctx) error {
	return h.update(c, true)
}

func (h *NotesHandler) update(c *fiber.Ctx, partial bool) error {
	ownerID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Authentication credentials were not provided."})
	}

	noteID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Not found."})
	}

	var req models.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Detail{Detail: "Malformed JSON body"})
	}

	if errs := validateNoteUpdate(req, partial); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	// Owner-scoped existence check before the write, so a foreign note is
	// indistinguishable from a missing one.
	if _, err := h.getNote(ownerID, int64(noteID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Not found."})
		}
		log.Printf("❌ Error fetching note %d: %v", noteID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	setClauses, args := buildNoteUpdate(req, partial)
	args = append(args, noteID, ownerID)

	query := fmt.Sprintf(`UPDATE notes SET %s WHERE id = ? AND owner_id = ?`, strings.Join(setClauses, ", "))
	if _, err := h.db.Exec(query, args...); err != nil {
		log.Printf("❌ Error updating note %d: %v", noteID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	note, err := h.getNote(ownerID, int64(noteID))
	if err != nil {
		log.Printf("❌ Error reading back note %d: %v", noteID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	return c.JSON(note)
}

// Delete handles DELETE /notes/:id/. Deleting an absent or foreign note is
// 404 either way.
func (h *NotesHandler) Delete(c *fiber.Ctx) error {
	ownerID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Authentication credentials were not provided."})
	}

	noteID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Not found."})
	}

	res, err := h.db.Exec(`DELETE FROM notes WHERE id = ? AND owner_id = ?`, noteID, ownerID)
	if err != nil {
		log.Printf("❌ Error deleting note %d: %v", noteID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(models.Detail{Detail: "Not found."})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// getNote fetches a single note scoped to its owner. Returns sql.ErrNoRows
// for both "does not exist" and "owned by someone else".
func (h *NotesHandler) getNote(ownerID, noteID int64) (models.Note, error) {
	var n models.Note
	err := h.db.QueryRow(`
		SELECT n.id, n.title, n.content, u.username, n.owner_id, n.created_at, n.updated_at
		FROM notes n
		JOIN users u ON u.id = n.owner_id
		WHERE n.id = ? AND n.owner_id = ?
	`, noteID, ownerID).Scan(&n.ID, &n.Title, &n.Content, &n.Owner, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// validateNoteCreate checks a create request: title required, content
// optional (defaults to empty).
func validateNoteCreate(req models.NoteRequest) models.FieldErrors {
	errs := models.FieldErrors{}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		errs["title"] = append(errs["title"], "This field is required.")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateNoteUpdate checks an update request. A full replace requires every
// mutable field; a partial update accepts any subset but rejects a blank
// title.
func validateNoteUpdate(req models.NoteRequest, partial bool) models.FieldErrors {
	errs := models.FieldErrors{}
	if !partial {
		if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
			errs["title"] = append(errs["title"], "This field is required.")
		}
		if req.Content == nil {
			errs["content"] = append(errs["content"], "This field is required.")
		}
	}
	if partial && req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errs["title"] = append(errs["title"], "This field may not be blank.")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// buildNoteUpdate assembles the SET clauses for an update. Full updates
// replace both mutable fields; partial updates touch only the provided ones.
// updated_at is always refreshed explicitly so an unchanged-value write still
// bumps it.
func buildNoteUpdate(req models.NoteRequest, partial bool) ([]string, []interface{}) {
	setClauses := []string{}
	args := []interface{}{}

	if !partial {
		setClauses = append(setClauses, "title = ?", "content = ?")
		args = append(args, *req.Title, *req.Content)
	} else {
		if req.Title != nil {
			setClauses = append(setClauses, "title = ?")
			args = append(args, *req.Title)
		}
		if req.Content != nil {
			setClauses = append(setClauses, "content = ?")
			args = append(args, *req.Content)
		}
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	return setClauses, args
}

// parsePage parses the page query param. Absent means page 1; anything
// non-numeric is an invalid page rather than a silent fallback.
func parsePage(raw string) (int, bool) {
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return page, true
}

// normalizePageSize clamps the requested page size to [1, maxPageSize],
// falling back to the default for nonsense values.
func normalizePageSize(requested int) int {
	if requested < 1 {
		return defaultPageSize
	}
	if requested > maxPageSize {
		return maxPageSize
	}
	return requested
}

// pageOffset converts a 1-based page number into a row offset. A page past
// the end of the result set is invalid, except page 1 of an empty set.
func pageOffset(page, pageSize int, count int64) (int, bool) {
	if page < 1 {
		return 0, false
	}
	offset := (page - 1) * pageSize
	if int64(offset) >= count && page > 1 {
		return 0, false
	}
	return offset, true
}

// pageLink builds the next/previous URL for a neighbor page, or nil when the
// page falls outside the result set.
func pageLink(base string, page, pageSize int, count int64) *string {
	if page < 1 {
		return nil
	}
	if int64((page-1)*pageSize) >= count {
		return nil
	}
	link := fmt.Sprintf("%s?page=%d&page_size=%d", base, page, pageSize)
	return &link
}
