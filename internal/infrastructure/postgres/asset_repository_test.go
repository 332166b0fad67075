package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"networth/internal/domain/asset"
)

func assetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "value", "description", "location",
		"acquired_at", "acquisition_value", "category_id", "is_liability",
		"metadata", "created_at", "updated_at",
	})
}

func TestAssetRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)
	now := time.Now()

	acquisition := 1300.0
	mock.ExpectQuery("INSERT INTO assets").
		WithArgs("user-1", "Apple Inc", 1500.0, "AAPL via Taxable", nil, nil, acquisition, int64(3), false, []byte(`{"symbol":"AAPL"}`)).
		WillReturnRows(assetRows().AddRow(
			10, "user-1", "Apple Inc", 1500.0, "AAPL via Taxable", nil,
			nil, 1300.0, 3, false, []byte(`{"symbol":"AAPL"}`), now, now,
		))

	a, err := repo.Create(context.Background(), asset.CreateParams{
		UserID:           "user-1",
		Name:             "Apple Inc",
		Value:            1500,
		Description:      "AAPL via Taxable",
		AcquisitionValue: &acquisition,
		CategoryID:       3,
		Metadata:         map[string]string{"symbol": "AAPL"},
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if a.ID != 10 || a.Value != 1500 {
		t.Errorf("Create() = %+v, want id 10 value 1500", a)
	}
	if a.AcquisitionValue == nil || *a.AcquisitionValue != 1300 {
		t.Errorf("AcquisitionValue = %v, want 1300", a.AcquisitionValue)
	}
	if a.Metadata["symbol"] != "AAPL" {
		t.Errorf("Metadata = %v, want decoded symbol", a.Metadata)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssetRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM assets").
		WithArgs(int64(99)).
		WillReturnRows(assetRows())

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, asset.ErrAssetNotFound) {
		t.Errorf("GetByID() error = %v, want ErrAssetNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssetRepository_ListByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM assets").
		WithArgs("user-1").
		WillReturnRows(assetRows().
			AddRow(2, "user-1", "Cash Balance", 250.5, nil, nil, nil, nil, 3, false, nil, now, now).
			AddRow(1, "user-1", "Apartment", 350000.0, nil, "Lisbon", nil, 300000.0, 1, false, nil, now, now))

	assets, err := repo.ListByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUserID() unexpected error: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("len(assets) = %d, want 2", len(assets))
	}
	if assets[0].Name != "Cash Balance" || assets[0].AcquisitionValue != nil {
		t.Errorf("assets[0] = %+v, want cash row without acquisition value", assets[0])
	}
	if assets[1].Location != "Lisbon" {
		t.Errorf("assets[1].Location = %q, want Lisbon", assets[1].Location)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssetRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetRepository(db)

	t.Run("deletes existing asset", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM assets").
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.Delete(context.Background(), 10); err != nil {
			t.Errorf("Delete() unexpected error: %v", err)
		}
	})

	t.Run("missing asset", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM assets").
			WithArgs(int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.Delete(context.Background(), 11); !errors.Is(err, asset.ErrAssetNotFound) {
			t.Errorf("Delete() error = %v, want ErrAssetNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssetCategoryRepository_GetBySlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssetCategoryRepository(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM asset_categories").
			WithArgs("investments").
			WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name"}).AddRow(3, "investments", "Investments"))

		c, err := repo.GetBySlug(context.Background(), "investments")
		if err != nil {
			t.Fatalf("GetBySlug() unexpected error: %v", err)
		}
		if c.ID != 3 || c.Name != "Investments" {
			t.Errorf("GetBySlug() = %+v, want id 3 Investments", c)
		}
	})

	t.Run("not seeded", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM asset_categories").
			WithArgs("bonds").
			WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name"}))

		if _, err := repo.GetBySlug(context.Background(), "bonds"); !errors.Is(err, asset.ErrCategoryNotFound) {
			t.Errorf("GetBySlug() error = %v, want ErrCategoryNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
