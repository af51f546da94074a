package repositories

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
		AddRow("usr_123", "ann@example.com", "$2a$10$hash", 1234567890)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
		WithArgs("ann@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail("ann@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if user == nil || user.ID != "usr_123" {
		t.Fatalf("Unexpected user: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("Expected nil error for missing user, got %v", err)
	}
	if user != nil {
		t.Errorf("Expected nil user, got %+v", user)
	}
}
