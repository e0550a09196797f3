package repository

import (
	"context"
	"database/sql"
	"testing"

	"employee-import/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresUsersRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresUsersRepository(db)

	return db, mock, repo
}

func sampleAggregate() *domain.PersonAggregate {
	return &domain.PersonAggregate{
		User: domain.User{
			FirstName:    sql.NullString{String: "Jane", Valid: true},
			LastName:     sql.NullString{String: "Doe", Valid: true},
			Username:     sql.NullString{String: "jdoe", Valid: true},
			Email:        "jane@example.com",
			Role:         domain.RoleRegistered,
			EmployeeNo:   "4521",
			FullName:     sql.NullString{String: "Jane Doe", Valid: true},
			IsEmployee:   true,
			PasswordHash: []byte("$2a$10$hash"),
		},
		Profile: domain.UserProfile{
			Phone:      sql.NullString{String: "555-0101", Valid: true},
			Email:      "jane@example.com",
			EmployeeNo: "4521",
		},
		Employee: domain.Employee{
			EmployeeNo:    "4521",
			EmployeeNoInt: 4521,
			FullName:      sql.NullString{String: "Jane Doe", Valid: true},
			Email:         "jane@example.com",
			Tenure:        sql.NullString{String: "Senior", Valid: true},
		},
	}
}

func TestFindUserIDByEmployeeNo_Found(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id"}).AddRow("user-123")

	mock.ExpectQuery(`SELECT user_id`).
		WithArgs("4521").
		WillReturnRows(rows)

	userID, err := repo.FindUserIDByEmployeeNo(context.Background(), "4521")

	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserIDByEmployeeNo_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id`).
		WithArgs("E999").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUserIDByEmployeeNo(context.Background(), "E999")

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserIDByEmployeeNo_EmptyKey(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	// 空自然键不应触发查询
	_, err := repo.FindUserIDByEmployeeNo(context.Background(), "")

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAggregate_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO employees`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, err := repo.CreateAggregate(context.Background(), sampleAggregate())

	require.NoError(t, err)
	assert.NotEmpty(t, userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAggregate_ProfileInsertFails_RollsBack(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_profiles`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.CreateAggregate(context.Background(), sampleAggregate())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAggregate_MissingNaturalKey(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	agg := sampleAggregate()
	agg.User.EmployeeNo = ""

	_, err := repo.CreateAggregate(context.Background(), agg)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAggregate_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE user_profiles SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE employees SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateAggregate(context.Background(), "user-123", sampleAggregate())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAggregate_EmployeeUpdateFails_RollsBack(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE user_profiles SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE employees SET`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.UpdateAggregate(context.Background(), "user-123", sampleAggregate())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
