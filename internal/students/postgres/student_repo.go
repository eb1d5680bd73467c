// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

// Package postgres implements the student repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rosterd/rosterd/internal/students"
)

// poolIface is the subset of pgxpool.Pool the repository uses. pgxmock
// satisfies it, so unit tests run without a database.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentRepository implements students.Repository using PostgreSQL.
type StudentRepository struct {
	pool poolIface
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool poolIface) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Create persists a new student.
func (r *StudentRepository) Create(ctx context.Context, student *students.Student) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO students (id, name, age, gender, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		student.ID.String(),
		student.Name,
		student.Age,
		string(student.Gender),
		student.CreatedAt,
	)
	if err != nil {
		return oops.Code("STUDENT_CREATE_FAILED").
			With("operation", "insert student").
			With("id", student.ID.String()).
			Wrap(err)
	}
	return nil
}

// List returns all students, oldest first.
func (r *StudentRepository) List(ctx context.Context) ([]*students.Student, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, age, gender, created_at
		FROM students
		ORDER BY id
	`)
	if err != nil {
		return nil, oops.Code("STUDENT_LIST_FAILED").
			With("operation", "list students").
			Wrap(err)
	}
	defer rows.Close()

	var list []*students.Student
	for rows.Next() {
		student, err := r.scanStudentRow(rows)
		if err != nil {
			return nil, oops.Code("STUDENT_SCAN_FAILED").
				With("operation", "scan student row").
				Wrap(err)
		}
		list = append(list, student)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("STUDENT_ROWS_ERROR").
			With("operation", "iterate student rows").
			Wrap(err)
	}

	return list, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id ulid.ULID) (*students.Student, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, age, gender, created_at
		FROM students
		WHERE id = $1
	`, id.String())

	student, err := r.scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("STUDENT_NOT_FOUND").
			With("id", id.String()).
			Wrap(students.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("STUDENT_GET_FAILED").
			With("operation", "get student by id").
			With("id", id.String()).
			Wrap(err)
	}
	return student, nil
}

// Update rewrites the writable fields of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *students.Student) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE students SET name = $2, age = $3, gender = $4
		WHERE id = $1
	`,
		student.ID.String(),
		student.Name,
		student.Age,
		string(student.Gender),
	)
	if err != nil {
		return oops.Code("STUDENT_UPDATE_FAILED").
			With("operation", "update student").
			With("id", student.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("STUDENT_NOT_FOUND").
			With("id", student.ID.String()).
			Wrap(students.ErrNotFound)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM students WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("STUDENT_DELETE_FAILED").
			With("operation", "delete student").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("STUDENT_NOT_FOUND").
			With("id", id.String()).
			Wrap(students.ErrNotFound)
	}
	return nil
}

// scanStudent scans a single row into a Student.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *StudentRepository) scanStudent(row pgx.Row) (*students.Student, error) {
	var (
		idStr     string
		name      string
		age       int
		gender    string
		createdAt time.Time
	)

	err := row.Scan(&idStr, &name, &age, &gender, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("STUDENT_SCAN_FAILED").
			With("operation", "scan student").
			Wrap(err)
	}

	return r.buildStudent(idStr, name, age, gender, createdAt)
}

// scanStudentRow scans a row from a rows iterator into a Student.
func (r *StudentRepository) scanStudentRow(rows pgx.Rows) (*students.Student, error) {
	var (
		idStr     string
		name      string
		age       int
		gender    string
		createdAt time.Time
	)

	if err := rows.Scan(&idStr, &name, &age, &gender, &createdAt); err != nil {
		return nil, oops.Code("STUDENT_SCAN_FAILED").
			With("operation", "scan student row").
			Wrap(err)
	}

	return r.buildStudent(idStr, name, age, gender, createdAt)
}

// buildStudent constructs a Student from scanned values.
func (r *StudentRepository) buildStudent(idStr, name string, age int, gender string, createdAt time.Time) (*students.Student, error) {
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("STUDENT_INVALID_ID").
			With("operation", "parse student id").
			With("id", idStr).
			Wrap(err)
	}

	return &students.Student{
		ID:        id,
		Name:      name,
		Age:       age,
		Gender:    students.Gender(gender),
		CreatedAt: createdAt,
	}, nil
}
