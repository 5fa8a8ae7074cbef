package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/internal/mirror"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// editRequest is an EditEvent plus an apply flag. With apply set the value
// is written into the cell before the edit is handled.
type editRequest struct {
	types.EditEvent
	Apply bool `json:"apply,omitempty"`
}

type editResponse struct {
	Role     string                 `json:"role"`
	Ignored  string                 `json:"ignored,omitempty"`
	Logged   bool                   `json:"logged"`
	Category *mirror.CategoryResult `json:"category,omitempty"`
	Reverse  *mirror.ReverseResult  `json:"reverse,omitempty"`
}

// formSubmitRequest optionally carries the response values; without them
// the last row already in Form Responses is ingested.
type formSubmitRequest struct {
	types.FormSubmitEvent
	Values []string `json:"values,omitempty"`
}

type formSubmitResponse struct {
	Ingested   bool   `json:"ingested"`
	Identifier string `json:"identifier,omitempty"`
	Row        int    `json:"row,omitempty"`
}

type backfillRequest struct {
	SourceID string `json:"source_id"`
}

type backfillResponse struct {
	Ran bool `json:"ran"`
	mirror.BackfillReport
}

type sheetInfo struct {
	Name    string `json:"name"`
	GID     int64  `json:"gid"`
	Role    string `json:"role"`
	LastRow int    `json:"last_row"`
}

type rowsResponse struct {
	Sheet string      `json:"sheet"`
	From  int         `json:"from"`
	Rows  []types.Row `json:"rows"`
}

func postEdit(h *mirror.Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req editRequest
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		var (
			out *mirror.EditOutcome
			err error
		)
		if req.Apply {
			if req.SourceID != h.Workbook().ID() {
				return c.JSON(http.StatusOK, editResponse{Ignored: mirror.IgnoreForeignSource})
			}
			out, err = h.ApplyEdit(req.Sheet, req.Row, req.Column, req.Value, req.Actor)
		} else {
			out, err = h.OnEdit(req.EditEvent)
		}
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, editResponse{
			Role:     out.Role.String(),
			Ignored:  out.Ignored,
			Logged:   out.Logged,
			Category: out.Category,
			Reverse:  out.Reverse,
		})
	}
}

func postFormSubmit(h *mirror.Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req formSubmitRequest
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		var (
			res *mirror.IngestResult
			err error
		)
		if len(req.Values) > 0 && req.SourceID == h.Workbook().ID() {
			res, err = h.SubmitResponse(types.RowOf(req.Values...))
		} else {
			res, err = h.OnFormSubmit(req.FormSubmitEvent)
		}
		if err != nil {
			return fail(c, err)
		}
		if res == nil {
			return c.JSON(http.StatusOK, formSubmitResponse{})
		}
		return c.JSON(http.StatusOK, formSubmitResponse{Ingested: true, Identifier: res.Identifier, Row: res.Row})
	}
}

func postBackfill(h *mirror.Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req backfillRequest
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		report, ran, err := h.Backfill(req.SourceID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, backfillResponse{Ran: ran, BackfillReport: report})
	}
}

func getSheets(wb types.Workbook) echo.HandlerFunc {
	return func(c echo.Context) error {
		names, err := wb.SheetNames()
		if err != nil {
			return fail(c, err)
		}
		out := make([]sheetInfo, 0, len(names))
		for _, name := range names {
			s, err := wb.Sheet(name)
			if err != nil {
				return fail(c, err)
			}
			last, err := s.LastRow()
			if err != nil {
				return fail(c, err)
			}
			out = append(out, sheetInfo{
				Name:    name,
				GID:     s.GID(),
				Role:    types.ResolveRole(name).Role.String(),
				LastRow: last,
			})
		}
		return c.JSON(http.StatusOK, out)
	}
}

func getRows(wb types.Workbook) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("name")
		from := 1
		if v := c.QueryParam("from"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return c.String(http.StatusBadRequest, "invalid from")
			}
			from = n
		}
		s, err := wb.Sheet(name)
		if err != nil {
			return fail(c, err)
		}
		rows, err := s.Rows(from)
		if err != nil {
			return fail(c, err)
		}
		if rows == nil {
			rows = []types.Row{}
		}
		return c.JSON(http.StatusOK, rowsResponse{Sheet: name, From: from, Rows: rows})
	}
}

// fail maps an error to a status code and writes it.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrSheetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrInvalidRow), errors.Is(err, types.ErrInvalidColumn),
		errors.Is(err, types.ErrInvalidSheetName):
		status = http.StatusBadRequest
	case errors.Is(err, mirror.ErrNotTarget):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("Request failed")
	}
	return c.String(status, err.Error())
}
