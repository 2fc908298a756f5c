package services

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Predicate is one named, optional condition of a list query
type Predicate struct {
	Name  string
	Apply func(*gorm.DB) *gorm.DB
}

// ListQuery composes the filters of a list endpoint.
// The owner predicate is always first and cannot be removed.
type ListQuery struct {
	predicates []Predicate
	order      string
}

func NewListQuery(userID uint) *ListQuery {
	return &ListQuery{predicates: []Predicate{OwnedBy(userID)}}
}

// Where adds predicates; predicates without a condition are skipped
func (q *ListQuery) Where(predicates ...Predicate) *ListQuery {
	for _, p := range predicates {
		if p.Apply != nil {
			q.predicates = append(q.predicates, p)
		}
	}
	return q
}

func (q *ListQuery) OrderBy(order string) *ListQuery {
	q.order = order
	return q
}

// Names lists the active predicates in application order
func (q *ListQuery) Names() []string {
	names := make([]string, len(q.predicates))
	for i, p := range q.predicates {
		names[i] = p.Name
	}
	return names
}

// Scope applies every predicate to db
func (q *ListQuery) Scope(db *gorm.DB) *gorm.DB {
	for _, p := range q.predicates {
		db = p.Apply(db)
	}
	return db
}

func OwnedBy(userID uint) Predicate {
	return Predicate{Name: "owned_by", Apply: func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}}
}

// Search matches term case-insensitively as a substring of any column.
// The alternatives are grouped so they never widen the owner filter.
func Search(term string, columns ...string) Predicate {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return Predicate{Name: "search"}
	}

	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	sql := "(" + strings.Join(clauses, " OR ") + ")"

	return Predicate{Name: "search", Apply: func(db *gorm.DB) *gorm.DB {
		return db.Where(sql, args...)
	}}
}

// StatusIs filters on status; empty and "all" mean no filter
func StatusIs(status string) Predicate {
	if status == "" || status == "all" {
		return Predicate{Name: "status"}
	}
	return Predicate{Name: "status", Apply: func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}}
}

// ClientIs filters on client_id; zero means no filter
func ClientIs(clientID uint) Predicate {
	if clientID == 0 {
		return Predicate{Name: "client"}
	}
	return Predicate{Name: "client", Apply: func(db *gorm.DB) *gorm.DB {
		return db.Where("client_id = ?", clientID)
	}}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// Page is the paginated list envelope
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

// NormalizePage clamps page and perPage to usable values
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Paginate counts and fetches one page of T matching q
func Paginate[T any](db *gorm.DB, q *ListQuery, page, perPage int, preloads ...string) (*Page[T], error) {
	page, perPage = NormalizePage(page, perPage)

	var model T
	var total int64
	if err := q.Scope(db.Model(&model)).Count(&total).Error; err != nil {
		return nil, err
	}

	find := q.Scope(db.Model(&model))
	for _, p := range preloads {
		find = find.Preload(p)
	}
	if q.order != "" {
		find = find.Order(q.order)
	}

	items := make([]T, 0, perPage)
	if err := find.Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
		return nil, err
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	result := &Page[T]{
		Data:        items,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
	if len(items) > 0 {
		from := (page-1)*perPage + 1
		to := from + len(items) - 1
		result.From, result.To = &from, &to
	}
	return result, nil
}
