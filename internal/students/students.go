// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

// Package students manages the student roster.
package students

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested student does not exist.
var ErrNotFound = errors.New("not found")

// Age bounds for a student record.
const (
	MinAge = 2
	MaxAge = 100
)

// Gender is the enumerated gender field.
type Gender string

// Accepted gender values.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is an accepted value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// nameRegex matches names of letters and single spaces.
var nameRegex = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*$`)

// Student is one roster entry.
type Student struct {
	ID        ulid.ULID
	Name      string
	Age       int
	Gender    Gender
	CreatedAt time.Time
}

// Input carries the writable student fields for create and update.
type Input struct {
	Name   string
	Age    int
	Gender Gender
}

// Validate normalizes and checks the input, returning the cleaned form.
func (in Input) Validate() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, oops.Code("STUDENT_INVALID_NAME").Errorf("name is required")
	}
	if !nameRegex.MatchString(in.Name) {
		return in, oops.Code("STUDENT_INVALID_NAME").
			Errorf("name may contain only letters and spaces")
	}
	if in.Age < MinAge || in.Age > MaxAge {
		return in, oops.Code("STUDENT_INVALID_AGE").
			With("min", MinAge).
			With("max", MaxAge).
			Errorf("age must be between %d and %d", MinAge, MaxAge)
	}
	if !in.Gender.Valid() {
		return in, oops.Code("STUDENT_INVALID_GENDER").
			With("gender", string(in.Gender)).
			Errorf("gender must be male, female, or other")
	}
	return in, nil
}

// NewStudent creates a validated Student with a fresh ID.
func NewStudent(in Input) (*Student, error) {
	in, err := in.Validate()
	if err != nil {
		return nil, err
	}
	return &Student{
		ID:        ulid.Make(),
		Name:      in.Name,
		Age:       in.Age,
		Gender:    in.Gender,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Repository manages student persistence.
type Repository interface {
	// Create persists a new student.
	Create(ctx context.Context, student *Student) error

	// List returns all students, oldest first.
	List(ctx context.Context) ([]*Student, error)

	// GetByID retrieves a student by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Student, error)

	// Update rewrites the writable fields of an existing student.
	Update(ctx context.Context, student *Student) error

	// Delete removes a student.
	Delete(ctx context.Context, id ulid.ULID) error
}
