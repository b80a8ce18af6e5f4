package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ottercare/pebble/model"
	"github.com/ottercare/pebble/pet/stats"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGateway implements Gateway over a gorm-managed pet_rows table.
type GormGateway struct {
	db *gorm.DB
}

// NewGormGateway creates a GormGateway.
func NewGormGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db}
}

// FetchByPlayerID reads the row for id, or ErrNotFound / ErrSchemaMissing.
func (g *GormGateway) FetchByPlayerID(ctx context.Context, id string) (*Row, error) {
	var rec model.PetRow
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, classify(err)
	}
	return fromModel(&rec)
}

// Upsert writes the row, replacing any existing record for the same id.
func (g *GormGateway) Upsert(ctx context.Context, row *Row) error {
	rec, err := toModel(row)
	if err != nil {
		return err
	}
	err = g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stats", "last_login", "inventory", "pet_name", "player_name", "updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return classify(err)
	}
	return nil
}

// DeleteByPlayerID removes the row for id. Missing rows are not an error.
func (g *GormGateway) DeleteByPlayerID(ctx context.Context, id string) error {
	if err := g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PetRow{}).Error; err != nil {
		return classify(err)
	}
	return nil
}

// classify maps driver errors onto the gateway's sentinel errors.
// SQLite reports a missing table as "no such table", MySQL as error
// 1146; both surface in the error text.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "error 1146") ||
		strings.Contains(msg, "doesn't exist") {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}
	return err
}

func fromModel(rec *model.PetRow) (*Row, error) {
	row := &Row{
		ID:         rec.ID,
		LastLogin:  rec.LastLogin,
		PetName:    rec.PetName,
		PlayerName: rec.PlayerName,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if len(rec.Stats) > 0 {
		if err := json.Unmarshal(rec.Stats, &row.Stats); err != nil {
			return nil, fmt.Errorf("cloud: decode stats: %w", err)
		}
	}
	row.Stats = stats.Sanitize(row.Stats)
	if len(rec.Inventory) > 0 {
		if err := json.Unmarshal(rec.Inventory, &row.Inventory); err != nil {
			return nil, fmt.Errorf("cloud: decode inventory: %w", err)
		}
	}
	return row, nil
}

func toModel(row *Row) (*model.PetRow, error) {
	statsJSON, err := json.Marshal(stats.Sanitize(row.Stats))
	if err != nil {
		return nil, err
	}
	inv := row.Inventory
	if inv == nil {
		inv = []string{}
	}
	invJSON, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	return &model.PetRow{
		ID:         row.ID,
		Stats:      datatypes.JSON(statsJSON),
		LastLogin:  row.LastLogin,
		Inventory:  datatypes.JSON(invJSON),
		PetName:    row.PetName,
		PlayerName: row.PlayerName,
	}, nil
}
