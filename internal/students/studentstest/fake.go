// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

// Package studentstest provides an in-memory student repository for tests.
package studentstest

import (
	"context"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/rosterd/rosterd/internal/students"
)

// Repo is an in-memory students.Repository.
type Repo struct {
	mu   sync.Mutex
	byID map[ulid.ULID]students.Student
}

// NewRepo creates an empty Repo.
func NewRepo() *Repo {
	return &Repo{byID: make(map[ulid.ULID]students.Student)}
}

// Create persists a new student.
func (r *Repo) Create(_ context.Context, st *students.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[st.ID] = *st
	return nil
}

// List returns all students, oldest first.
func (r *Repo) List(_ context.Context) ([]*students.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*students.Student, 0, len(r.byID))
	for _, st := range r.byID {
		cp := st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Compare(out[j].ID) < 0
	})
	return out, nil
}

// GetByID retrieves a student by ID.
func (r *Repo) GetByID(_ context.Context, id ulid.ULID) (*students.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.byID[id]
	if !ok {
		return nil, students.ErrNotFound
	}
	out := st
	return &out, nil
}

// Update rewrites an existing student.
func (r *Repo) Update(_ context.Context, st *students.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[st.ID]; !ok {
		return students.ErrNotFound
	}
	r.byID[st.ID] = *st
	return nil
}

// Delete removes a student.
func (r *Repo) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return students.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// Len reports the number of stored students.
func (r *Repo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

var _ students.Repository = (*Repo)(nil)
