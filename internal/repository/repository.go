package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

// Repos is the sqlx backed store for reference data and readings. Queries
// are written with ? placeholders and rebound for the connected driver.
type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

const (
	unitColumns   = `id, name, unit_represent, sec_in_rate, type_of_unit, displayable`
	meterColumns  = `id, name, unit_id, unit_represent, enabled, displayable`
	groupColumns  = `id, name, default_graphic_unit`
	convColumns   = `source_id, destination_id, slope, intercept, bidirectional`
	readingColumn = `meter_id, start_timestamp, end_timestamp, reading`
)

func (r *Repos) get(ctx context.Context, dest any, what string, id int64, query string) error {
	err := r.db.GetContext(ctx, dest, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return err
}

func (r *Repos) Unit(ctx context.Context, id int64) (domain.Unit, error) {
	var u domain.Unit
	err := r.get(ctx, &u, "unit", id, `SELECT `+unitColumns+` FROM units WHERE id = ?`)
	return u, err
}

func (r *Repos) Meter(ctx context.Context, id int64) (domain.Meter, error) {
	var m domain.Meter
	err := r.get(ctx, &m, "meter", id, `SELECT `+meterColumns+` FROM meters WHERE id = ?`)
	return m, err
}

func (r *Repos) Group(ctx context.Context, id int64) (domain.Group, error) {
	var g domain.Group
	err := r.get(ctx, &g, "group", id, `SELECT `+groupColumns+` FROM meter_groups WHERE id = ?`)
	return g, err
}

func (r *Repos) GroupMembers(ctx context.Context, groupID int64) ([]domain.Member, error) {
	var out []domain.Member
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		`SELECT member_id, member_kind FROM group_members WHERE group_id = ? ORDER BY member_kind DESC, member_id`), groupID)
	return out, err
}

func (r *Repos) Conversions(ctx context.Context) ([]domain.Conversion, error) {
	var out []domain.Conversion
	err := r.db.SelectContext(ctx, &out, `SELECT `+convColumns+` FROM conversions ORDER BY source_id, destination_id`)
	return out, err
}

// ReadingsInRange returns readings of meterID intersecting [start, end)
// ordered by start time.
func (r *Repos) ReadingsInRange(ctx context.Context, meterID int64, start, end time.Time) ([]domain.Reading, error) {
	var out []domain.Reading
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		`SELECT `+readingColumn+` FROM readings
		WHERE meter_id = ? AND end_timestamp > ? AND start_timestamp < ?
		ORDER BY start_timestamp`), meterID, start.UTC(), end.UTC())
	return out, err
}

func (r *Repos) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	var out []domain.Unit
	err := r.db.SelectContext(ctx, &out, `SELECT `+unitColumns+` FROM units ORDER BY id`)
	return out, err
}

func (r *Repos) ListMeters(ctx context.Context) ([]domain.Meter, error) {
	var out []domain.Meter
	err := r.db.SelectContext(ctx, &out, `SELECT `+meterColumns+` FROM meters ORDER BY id`)
	return out, err
}

func (r *Repos) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var out []domain.Group
	err := r.db.SelectContext(ctx, &out, `SELECT `+groupColumns+` FROM meter_groups ORDER BY id`)
	return out, err
}

func (r *Repos) InsertUnit(ctx context.Context, u *domain.Unit) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO units(`+unitColumns+`)
		VALUES (:id, :name, :unit_represent, :sec_in_rate, :type_of_unit, :displayable)`, u)
	return err
}

func (r *Repos) InsertMeter(ctx context.Context, m *domain.Meter) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO meters(`+meterColumns+`)
		VALUES (:id, :name, :unit_id, :unit_represent, :enabled, :displayable)`, m)
	return err
}

func (r *Repos) InsertGroup(ctx context.Context, g *domain.Group) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO meter_groups(`+groupColumns+`)
		VALUES (:id, :name, :default_graphic_unit)`, g)
	return err
}

func (r *Repos) AddGroupMember(ctx context.Context, groupID int64, m domain.Member) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO group_members(group_id, member_id, member_kind) VALUES (?, ?, ?)`), groupID, m.ID, m.Kind)
	return err
}

func (r *Repos) InsertConversion(ctx context.Context, c *domain.Conversion) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO conversions(`+convColumns+`)
		VALUES (:source_id, :destination_id, :slope, :intercept, :bidirectional)`, c)
	return err
}

// InsertReadings stores rds in one transaction.
func (r *Repos) InsertReadings(ctx context.Context, rds []domain.Reading) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		`INSERT INTO readings(`+readingColumn+`) VALUES (?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rd := range rds {
		if _, err := stmt.ExecContext(ctx, rd.MeterID, rd.Start.UTC(), rd.End.UTC(), rd.Value); err != nil {
			return fmt.Errorf("insert reading meter %d at %s: %w", rd.MeterID, rd.Start.Format(time.RFC3339), err)
		}
	}
	return tx.Commit()
}
