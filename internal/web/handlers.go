package web

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/export"
	"github.com/joacominatel/pgbrowse/internal/logger"
)

const defaultSchema = "public"

var pageSizes = []int{25, 50, 100, 250, 500}

type link struct {
	Label string
	URL   string
}

type tableLink struct {
	Schema  string
	Name    string
	URL     string
	Exports []link
}

type columnView struct {
	Position  int
	Name      string
	Type      string
	Nullable  string
	Default   string
	MaxLength string
	Primary   bool
}

type headerView struct {
	Name  string
	URL   string
	Arrow string
}

type cellView struct {
	Text string
	Null bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)

	var tables []database.Table
	var dbName string
	b, err := s.open(sess)
	if err == nil {
		defer b.Close()
		dbName = b.DatabaseName()
		tables, err = b.ListTables(r.Context())
	}
	if err != nil {
		s.requestLog(r).Error("Listing tables failed", logger.Ctx{"err": err})
		sess.flash(flashError, "Failed to connect to database. Please check your connection.")
		tables = nil
	}

	links := make([]tableLink, 0, len(tables))
	for _, t := range tables {
		links = append(links, tableLink{
			Schema:  t.Schema,
			Name:    t.Name,
			URL:     tableURL(t, nil),
			Exports: exportLinks(t),
		})
	}

	s.render(w, r, sess, http.StatusOK, "index.html", pongo2.Context{
		"database": dbName,
		"tables":   links,
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	q := r.URL.Query()
	table := database.Table{Schema: queryDefault(q, "schema", defaultSchema), Name: tableParam(r)}

	page := positiveInt(q.Get("page"), 1)
	perPage := positiveInt(q.Get("per_page"), s.pageSize)
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	orderBy := q.Get("order_by")
	orderDir := "ASC"
	if strings.EqualFold(q.Get("order_dir"), "desc") {
		orderDir = "DESC"
	}
	search := strings.TrimSpace(q.Get("search"))
	offset := (page - 1) * perPage

	b, err := s.open(sess)
	if err != nil {
		sess.flash(flashError, fmt.Sprintf("Failed to fetch table structure for %s", table.Name))
		s.redirect(w, r, sess, "/")
		return
	}
	defer b.Close()

	structure, err := b.DescribeTable(r.Context(), table)
	if err != nil || len(structure) == 0 {
		sess.flash(flashError, fmt.Sprintf("Failed to fetch table structure for %s", table.Name))
		s.redirect(w, r, sess, "/")
		return
	}

	var rows []database.Row
	var total int64
	data, err := b.FetchRows(r.Context(), table, database.FetchOptions{
		Limit:    perPage,
		Offset:   offset,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
	})
	if err != nil {
		s.requestLog(r).Error("Fetching rows failed", logger.Ctx{"table": table.Qualified(), "err": err})
		sess.flash(flashError, fmt.Sprintf("Failed to fetch data from table %s", table.Name))
	} else {
		rows, total = data.Rows, data.Total
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	// state shared by every link on the page
	state := url.Values{}
	state.Set("per_page", strconv.Itoa(perPage))
	if search != "" {
		state.Set("search", search)
	}
	if orderBy != "" {
		state.Set("order_by", orderBy)
		state.Set("order_dir", orderDir)
	}

	headers := make([]headerView, len(structure))
	for i, c := range structure {
		v := cloneValues(state)
		v.Set("order_by", c.Name)
		v.Set("order_dir", "ASC")
		h := headerView{Name: c.Name}
		if c.Name == orderBy {
			if orderDir == "ASC" {
				v.Set("order_dir", "DESC")
				h.Arrow = "▲"
			} else {
				h.Arrow = "▼"
			}
		}
		h.URL = tableURL(table, v)
		headers[i] = h
	}

	cells := make([][]cellView, len(rows))
	for i, row := range rows {
		cells[i] = make([]cellView, len(row))
		for j, f := range row {
			cells[i][j] = cellView{Text: f.Value.String(), Null: f.Value.IsNull()}
		}
	}

	pageURL := func(p int) string {
		v := cloneValues(state)
		v.Set("page", strconv.Itoa(p))
		return tableURL(table, v)
	}

	s.render(w, r, sess, http.StatusOK, "table.html", pongo2.Context{
		"schema":      table.Schema,
		"table":       table.Name,
		"base_url":    "/table/" + url.PathEscape(table.Name),
		"structure":   columnViews(structure),
		"headers":     headers,
		"rows":        cells,
		"page":        page,
		"per_page":    perPage,
		"page_sizes":  pageSizes,
		"total_count": total,
		"total_pages": totalPages,
		"has_prev":    page > 1,
		"has_next":    page < totalPages,
		"prev_url":    pageURL(page - 1),
		"next_url":    pageURL(page + 1),
		"order_by":    orderBy,
		"order_dir":   orderDir,
		"search":      search,
		"exports":     exportLinks(table),
	})
}

func (s *Server) handleQueryPage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	s.render(w, r, sess, http.StatusOK, "query.html", pongo2.Context{
		"row_limit": database.QueryRowLimit,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	q := r.URL.Query()
	table := database.Table{Schema: queryDefault(q, "schema", defaultSchema), Name: tableParam(r)}
	back := tableURL(table, nil)

	format, err := export.ParseFormat(queryDefault(q, "format", string(export.FormatCSV)))
	if err != nil {
		sess.flash(flashError, "Invalid export format")
		s.redirect(w, r, sess, back)
		return
	}

	b, err := s.open(sess)
	if err != nil {
		sess.flash(flashError, "Failed to export table data")
		s.redirect(w, r, sess, back)
		return
	}
	defer b.Close()

	var body string
	switch format {
	case export.FormatJSON:
		body, err = b.ExportJSON(r.Context(), table)
	case export.FormatSQL:
		body, err = b.ExportSQL(r.Context(), table)
	default:
		body, err = b.ExportCSV(r.Context(), table)
	}
	if err != nil {
		s.requestLog(r).Error("Export failed", logger.Ctx{"table": table.Qualified(), "format": string(format), "err": err})
		sess.flash(flashError, "Failed to export table data")
		s.redirect(w, r, sess, back)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": format.Filename(table.Name),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleSelectTarget(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	name := r.FormValue("target")

	if s.svc.HasTarget(name) {
		sess.Target = name
		sess.flash(flashSuccess, fmt.Sprintf("Switched to database %s", name))
	} else {
		sess.flash(flashError, fmt.Sprintf("Unknown database %s", name))
	}

	to := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && ref.Host == r.Host {
		to = ref.Path
	}
	s.redirect(w, r, sess, to)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	s.render(w, r, sess, http.StatusNotFound, "error.html", pongo2.Context{
		"error": "Page not found",
	})
}

// tableParam returns the decoded {table} path segment.
func tableParam(r *http.Request) string {
	v := chi.URLParam(r, "table")
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(v); err == nil {
			return u
		}
	}
	return v
}

func tableURL(t database.Table, v url.Values) string {
	if v == nil {
		v = url.Values{}
	} else {
		v = cloneValues(v)
	}
	v.Set("schema", t.Schema)
	return "/table/" + url.PathEscape(t.Name) + "?" + v.Encode()
}

func exportLinks(t database.Table) []link {
	formats := []export.Format{export.FormatCSV, export.FormatJSON, export.FormatSQL}
	links := make([]link, len(formats))
	for i, f := range formats {
		v := url.Values{}
		v.Set("schema", t.Schema)
		v.Set("format", string(f))
		links[i] = link{
			Label: strings.ToUpper(string(f)),
			URL:   "/export/" + url.PathEscape(t.Name) + "?" + v.Encode(),
		}
	}
	return links
}

func columnViews(columns []database.Column) []columnView {
	out := make([]columnView, len(columns))
	for i, c := range columns {
		v := columnView{
			Position: c.OrdinalPos,
			Name:     c.Name,
			Type:     c.DataType,
			Nullable: "NO",
			Primary:  c.IsPrimary,
		}
		if c.IsNullable {
			v.Nullable = "YES"
		}
		if c.Default != nil {
			v.Default = *c.Default
		}
		if c.MaxLength != nil {
			v.MaxLength = strconv.FormatInt(*c.MaxLength, 10)
		}
		out[i] = v
	}
	return out
}

func queryDefault(q url.Values, key, def string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return def
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
