// services/bounty_store.go
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bounty-board/filters"
	"bounty-board/models"
)

var (
	ErrBountyNotFound    = errors.New("bounty not found")
	ErrStaleStatus       = errors.New("bounty status changed since it was read")
	ErrInvalidCursor     = errors.New("pagination cursor does not reference a bounty")
	ErrUnsupportedFilter = errors.New("unsupported predicate document")
)

// BountyPage is one page of a list request.
type BountyPage struct {
	Results  []models.Bounty `json:"results"`
	Next     string          `json:"next,omitempty"`
	Previous string          `json:"previous,omitempty"`
}

// BountyStore persists bounties. Update is conditional on the stored status
// and version still matching what was read, so two concurrent writers cannot
// both win.
type BountyStore interface {
	List(ctx context.Context, filter filters.Doc, order filters.Sort, page filters.Pagination) (BountyPage, error)
	Get(ctx context.Context, id string) (models.Bounty, error)
	Create(ctx context.Context, b *models.Bounty) error
	Update(ctx context.Context, b *models.Bounty, expected models.BountyStatus) error
	ChangedSince(ctx context.Context, customerID string, since time.Time) ([]models.Bounty, error)
	Overdue(ctx context.Context, now time.Time) ([]models.Bounty, error)
}

var columns = map[string]string{
	filters.FieldStatus:       "status",
	filters.FieldCustomerID:   "customer_id",
	filters.FieldRewardAmount: "reward_amount",
	filters.FieldPaidStatus:   "paid_status",
	filters.FieldCreatedBy:    "created_by_discord_id",
	filters.FieldClaimedBy:    "claimed_by_discord_id",
	filters.FieldCreatedAt:    "created_at",
	filters.FieldDueAt:        "due_at",
	filters.FieldClaimedAt:    "claimed_at",
	filters.FieldSeason:       "season",
}

const textSearchSQL = "to_tsvector('english', coalesce(title, '') || ' ' || coalesce(description, '') || ' ' || coalesce(criteria, '')) @@ plainto_tsquery('english', ?)"

// GormBountyStore is the Postgres implementation of BountyStore.
type GormBountyStore struct {
	DB *gorm.DB
}

func NewGormBountyStore(db *gorm.DB) *GormBountyStore {
	return &GormBountyStore{DB: db}
}

// MatchConditions translates the match clause of a predicate document into
// gorm expressions. Keys are visited in sorted order.
func MatchConditions(match filters.Doc) ([]clause.Expression, error) {
	keys := make([]string, 0, len(match))
	for k := range match {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var exprs []clause.Expression
	for _, key := range keys {
		value := match[key]
		switch key {
		case filters.KeyTextSearch:
			ts, ok := value.(filters.Doc)
			if !ok {
				return nil, fmt.Errorf("%w: textSearch must be a document", ErrUnsupportedFilter)
			}
			text, _ := ts[filters.OpSearch].(string)
			if text == "" {
				continue
			}
			exprs = append(exprs, clause.Expr{SQL: textSearchSQL, Vars: []any{text}})
		case filters.OpOr:
			branches, ok := value.([]filters.Doc)
			if !ok {
				return nil, fmt.Errorf("%w: or must be a list of documents", ErrUnsupportedFilter)
			}
			var ors []clause.Expression
			for _, branch := range branches {
				conds, err := MatchConditions(branch)
				if err != nil {
					return nil, err
				}
				if len(conds) > 0 {
					ors = append(ors, clause.And(conds...))
				}
			}
			if len(ors) > 0 {
				exprs = append(exprs, clause.Or(ors...))
			}
		default:
			conds, err := fieldConditions(key, value)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, conds...)
		}
	}
	return exprs, nil
}

func fieldConditions(field string, value any) ([]clause.Expression, error) {
	name, ok := columns[field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrUnsupportedFilter, field)
	}
	col := clause.Column{Name: name}

	ops, ok := value.(filters.Doc)
	if !ok {
		return []clause.Expression{clause.Eq{Column: col, Value: value}}, nil
	}

	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var exprs []clause.Expression
	for _, op := range keys {
		arg := ops[op]
		switch op {
		case filters.OpIn:
			exprs = append(exprs, clause.IN{Column: col, Values: toValues(arg)})
		case filters.OpGte:
			exprs = append(exprs, clause.Gte{Column: col, Value: arg})
		case filters.OpLte:
			exprs = append(exprs, clause.Lte{Column: col, Value: arg})
		case filters.OpExists:
			if exists, _ := arg.(bool); exists {
				exprs = append(exprs, clause.Neq{Column: col, Value: nil})
			} else {
				exprs = append(exprs, clause.Eq{Column: col, Value: nil})
			}
		default:
			return nil, fmt.Errorf("%w: unknown operator %q on %s", ErrUnsupportedFilter, op, field)
		}
	}
	return exprs, nil
}

func toValues(v any) []any {
	switch vals := v.(type) {
	case []any:
		return vals
	case []string:
		out := make([]any, len(vals))
		for i, s := range vals {
			out[i] = s
		}
		return out
	case []models.BountyStatus:
		out := make([]any, len(vals))
		for i, s := range vals {
			out[i] = string(s)
		}
		return out
	default:
		return []any{v}
	}
}

// sortValue reads the value of a sortable field, nil when unset.
func sortValue(b models.Bounty, field string) any {
	switch field {
	case filters.FieldRewardAmount:
		return b.Reward.Amount
	case filters.FieldDueAt:
		return b.DueAt
	case filters.FieldClaimedAt:
		if b.ClaimedAt == nil {
			return nil
		}
		return *b.ClaimedAt
	case filters.FieldSeason:
		if b.Season == nil {
			return nil
		}
		return *b.Season
	default:
		return b.CreatedAt
	}
}

// keysetAfter selects rows strictly after the cursor row when walking in
// the given direction. Rows with a null sort value come last.
func keysetAfter(col string, cursorValue any, cursorID string, descending bool) clause.Expression {
	op := ">"
	if descending {
		op = "<"
	}
	c := clause.Column{Name: col}
	id := clause.Column{Name: "id"}
	if cursorValue == nil {
		return clause.Expr{
			SQL:  "(? IS NULL AND ? " + op + " ?)",
			Vars: []any{c, id, cursorID},
		}
	}
	return clause.Expr{
		SQL:  "(? " + op + " ? OR (? = ? AND ? " + op + " ?) OR ? IS NULL)",
		Vars: []any{c, cursorValue, c, cursorValue, id, cursorID, c},
	}
}

// keysetBefore selects rows strictly before the cursor row, walking back.
func keysetBefore(col string, cursorValue any, cursorID string, descending bool) clause.Expression {
	op := "<"
	if descending {
		op = ">"
	}
	c := clause.Column{Name: col}
	id := clause.Column{Name: "id"}
	if cursorValue == nil {
		return clause.Expr{
			SQL:  "((? IS NULL AND ? " + op + " ?) OR ? IS NOT NULL)",
			Vars: []any{c, id, cursorID, c},
		}
	}
	return clause.Expr{
		SQL:  "(? " + op + " ? OR (? = ? AND ? " + op + " ?))",
		Vars: []any{c, cursorValue, c, cursorValue, id, cursorID},
	}
}

func orderBy(col string, descending, nullsFirst bool) clause.OrderBy {
	nulls := "NULLS LAST"
	if nullsFirst {
		nulls = "NULLS FIRST"
	}
	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	return clause.OrderBy{Expression: clause.Expr{
		SQL:  "? " + dir + " " + nulls + ", ? " + dir,
		Vars: []any{clause.Column{Name: col}, clause.Column{Name: "id"}},
	}}
}

func (s *GormBountyStore) cursor(ctx context.Context, id string) (models.Bounty, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Bounty{}, ErrInvalidCursor
	}
	b, err := s.Get(ctx, id)
	if errors.Is(err, ErrBountyNotFound) {
		return b, ErrInvalidCursor
	}
	return b, err
}

// List returns one page. Next wins over Previous when both are given.
func (s *GormBountyStore) List(ctx context.Context, filter filters.Doc, order filters.Sort, page filters.Pagination) (BountyPage, error) {
	conds, err := MatchConditions(filter.Match())
	if err != nil {
		return BountyPage{}, err
	}
	col, ok := columns[order.Field]
	if !ok {
		col = columns[filters.DefaultSortField]
		order.Field = filters.DefaultSortField
	}
	descending := order.Order != filters.Ascending
	limit := page.Limit
	if limit <= 0 || limit > filters.MaxPageSize {
		limit = filters.MaxPageSize
	}

	backward := page.Next == "" && page.Previous != ""
	switch {
	case page.Next != "":
		c, err := s.cursor(ctx, page.Next)
		if err != nil {
			return BountyPage{}, err
		}
		conds = append(conds, keysetAfter(col, sortValue(c, order.Field), c.ID, descending))
	case backward:
		c, err := s.cursor(ctx, page.Previous)
		if err != nil {
			return BountyPage{}, err
		}
		conds = append(conds, keysetBefore(col, sortValue(c, order.Field), c.ID, descending))
	}

	tx := s.DB.WithContext(ctx).Model(&models.Bounty{})
	if len(conds) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: conds})
	}
	if backward {
		tx = tx.Clauses(orderBy(col, !descending, true))
	} else {
		tx = tx.Clauses(orderBy(col, descending, false))
	}

	var rows []models.Bounty
	if err := tx.Limit(limit + 1).Find(&rows).Error; err != nil {
		return BountyPage{}, fmt.Errorf("list bounties: %w", err)
	}

	return pageOf(rows, limit, page), nil
}

// pageOf trims a limit+1 fetch to one page and mints its cursors. Rows of a
// backward fetch arrive in reverse order and are put back in display order.
func pageOf(rows []models.Bounty, limit int, page filters.Pagination) BountyPage {
	backward := page.Next == "" && page.Previous != ""
	more := len(rows) > limit
	if more {
		rows = rows[:limit]
	}
	if backward {
		rows = slices.Clone(rows)
		slices.Reverse(rows)
	}

	out := BountyPage{Results: rows}
	if len(rows) == 0 {
		return out
	}
	first, last := rows[0].ID, rows[len(rows)-1].ID
	if backward {
		out.Next = last
		if more {
			out.Previous = first
		}
	} else {
		if more {
			out.Next = last
		}
		if page.Next != "" {
			out.Previous = first
		}
	}
	return out
}

func (s *GormBountyStore) Get(ctx context.Context, id string) (models.Bounty, error) {
	var b models.Bounty
	if _, err := uuid.Parse(id); err != nil {
		return b, ErrBountyNotFound
	}
	if err := s.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b, ErrBountyNotFound
		}
		return b, fmt.Errorf("get bounty %s: %w", id, err)
	}
	return b, nil
}

// Create assigns a fresh id and inserts b.
func (s *GormBountyStore) Create(ctx context.Context, b *models.Bounty) error {
	b.ID = uuid.NewString()
	if err := s.DB.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create bounty: %w", err)
	}
	return nil
}

// Update writes every column of b, provided the stored row still has the
// status and version b was read with. It returns ErrStaleStatus when another
// writer got there first, whether or not that writer changed the status.
func (s *GormBountyStore) Update(ctx context.Context, b *models.Bounty, expected models.BountyStatus) error {
	readVersion := b.Version
	b.Version = readVersion + 1
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(b).
			Where("status = ? AND version = ?", expected, readVersion).
			Select("*").Omit("created_at").
			Updates(b)
		if res.Error != nil {
			return fmt.Errorf("update bounty %s: %w", b.ID, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		var count int64
		if err := tx.Model(&models.Bounty{}).Where("id = ?", b.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("update bounty %s: %w", b.ID, err)
		}
		if count == 0 {
			return ErrBountyNotFound
		}
		return ErrStaleStatus
	})
	if err != nil {
		b.Version = readVersion
	}
	return err
}

// ChangedSince lists bounties of one customer touched after since, oldest first.
func (s *GormBountyStore) ChangedSince(ctx context.Context, customerID string, since time.Time) ([]models.Bounty, error) {
	var rows []models.Bounty
	tx := s.DB.WithContext(ctx).Where("updated_at > ?", since)
	if customerID != "" {
		tx = tx.Where("customer_id = ?", customerID)
	}
	if err := tx.Order("updated_at ASC").Limit(filters.MaxPageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("bounties changed since %s: %w", since.Format(time.RFC3339), err)
	}
	return rows, nil
}

// OverdueDoc matches work that is still open or claimed past its due date.
func OverdueDoc(now time.Time) filters.Doc {
	return filters.Doc{filters.KeyMatch: filters.Doc{
		filters.FieldStatus: filters.Doc{filters.OpIn: []string{
			string(models.BountyStatusOpen),
			string(models.BountyStatusInProgress),
		}},
		filters.FieldDueAt: filters.Doc{filters.OpLte: now},
	}}
}

func (s *GormBountyStore) Overdue(ctx context.Context, now time.Time) ([]models.Bounty, error) {
	conds, err := MatchConditions(OverdueDoc(now).Match())
	if err != nil {
		return nil, err
	}
	var rows []models.Bounty
	if err := s.DB.WithContext(ctx).Clauses(clause.Where{Exprs: conds}).
		Order("due_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("overdue bounties: %w", err)
	}
	return rows, nil
}
