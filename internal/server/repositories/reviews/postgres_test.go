package reviews

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const selectCols = `id,\s*project_id,\s*file_url,\s*file_type,\s*status,\s*storage_path,\s*created_at`

func TestInsert_WithProject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+reviews\b.*RETURNING\s+created_at\s*$`

	mock.ExpectQuery(q).
		WithArgs("r1", "p1", "https://cdn/x.jpg", "image", "needs_changes", "x.jpg").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	_, err := repo.Insert(context.Background(), &models.Review{
		ID:          "r1",
		ProjectID:   "p1",
		FileURL:     "https://cdn/x.jpg",
		FileType:    "image",
		Status:      "needs_changes",
		StoragePath: "x.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_StandaloneStoresNullProject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+reviews\b.*RETURNING\s+created_at\s*$`

	mock.ExpectQuery(q).
		WithArgs("r1", nil, "https://cdn/x.pdf", "pdf", "needs_changes", "x.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	_, err := repo.Insert(context.Background(), &models.Review{
		ID:          "r1",
		FileURL:     "https://cdn/x.pdf",
		FileType:    "pdf",
		Status:      "needs_changes",
		StoragePath: "x.pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSelectByProject_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + selectCols + `\s+FROM\s+reviews\s+WHERE\s+project_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s*$`

	rows := sqlmock.NewRows([]string{"id", "project_id", "file_url", "file_type", "status", "storage_path", "created_at"}).
		AddRow("r2", "p1", "u2", "image", "approved", "s2", time.Now()).
		AddRow("r1", "p1", "u1", "pdf", "needs_changes", "s1", time.Now().Add(-time.Hour))
	mock.ExpectQuery(q).WithArgs("p1").WillReturnRows(rows)

	got, err := repo.SelectByProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSelectStatusesByProject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+status\s+FROM\s+reviews\s+WHERE\s+project_id\s*=\s*\$1$`

	rows := sqlmock.NewRows([]string{"status"}).
		AddRow("approved").
		AddRow("needs_changes")
	mock.ExpectQuery(q).WithArgs("p1").WillReturnRows(rows)

	got, err := repo.SelectStatusesByProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "approved" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestGetByID_NullProjectID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + selectCols + `\s+FROM\s+reviews\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "file_url", "file_type", "status", "storage_path", "created_at"}).
			AddRow("r1", nil, "u1", "file", "needs_changes", "s1", time.Now()))

	got, err := repo.GetByID(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProjectID != "" {
		t.Fatalf("want empty project id, got %q", got.ProjectID)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestUpdateStatus_ReturnsResultingRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+reviews\s+SET\s+status\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\b`

	mock.ExpectQuery(q).WithArgs("r1", "approved").
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "file_url", "file_type", "status", "storage_path", "created_at"}).
			AddRow("r1", "p1", "u1", "image", "approved", "s1", time.Now()))

	got, err := repo.UpdateStatus(context.Background(), "r1", "approved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != "approved" {
		t.Fatalf("status not taken from returned row: %+v", got)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE`).WithArgs("missing", "approved").WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), "missing", "approved")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestSelectStoragePathsByProject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+storage_path\s+FROM\s+reviews\s+WHERE\s+project_id\s*=\s*\$1$`

	rows := sqlmock.NewRows([]string{"storage_path"}).AddRow("a.jpg").AddRow("b.pdf")
	mock.ExpectQuery(q).WithArgs("p1").WillReturnRows(rows)

	got, err := repo.SelectStoragePathsByProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestDeleteByID_NoRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+reviews\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByID(context.Background(), "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDeleteByProject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+reviews\s+WHERE\s+project_id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteByProject(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
