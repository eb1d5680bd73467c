// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package students

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rosterd/rosterd/internal/access"
)

// Service coordinates roster operations. Authorization happens at the access
// gate before the service is invoked; the identity projection is accepted
// here only for attribution in logs.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("STUDENT_SERVICE_INVALID").Errorf("repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}, nil
}

// Create validates and persists a new student.
func (s *Service) Create(ctx context.Context, actor access.Context, in Input) (*Student, error) {
	student, err := NewStudent(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, oops.Code("STUDENT_CREATE_FAILED").
			With("operation", "create student").
			Wrap(err)
	}
	s.logger.Info("student created",
		"student_id", student.ID.String(),
		"actor", actor.Username,
	)
	return student, nil
}

// List returns all students.
func (s *Service) List(ctx context.Context) ([]*Student, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, oops.Code("STUDENT_LIST_FAILED").
			With("operation", "list students").
			Wrap(err)
	}
	return list, nil
}

// GetByID returns one student.
func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("STUDENT_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("STUDENT_GET_FAILED").
			With("operation", "get student").
			With("id", id.String()).
			Wrap(err)
	}
	return student, nil
}

// Update validates the input and rewrites an existing student.
func (s *Service) Update(ctx context.Context, actor access.Context, id ulid.ULID, in Input) (*Student, error) {
	in, err := in.Validate()
	if err != nil {
		return nil, err
	}

	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("STUDENT_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("STUDENT_UPDATE_FAILED").
			With("operation", "get student").
			With("id", id.String()).
			Wrap(err)
	}

	student.Name = in.Name
	student.Age = in.Age
	student.Gender = in.Gender

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("STUDENT_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("STUDENT_UPDATE_FAILED").
			With("operation", "update student").
			With("id", id.String()).
			Wrap(err)
	}

	s.logger.Info("student updated",
		"student_id", student.ID.String(),
		"actor", actor.Username,
	)
	return student, nil
}

// Delete removes a student.
func (s *Service) Delete(ctx context.Context, actor access.Context, id ulid.ULID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("STUDENT_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return oops.Code("STUDENT_DELETE_FAILED").
			With("operation", "delete student").
			With("id", id.String()).
			Wrap(err)
	}
	s.logger.Info("student deleted",
		"student_id", id.String(),
		"actor", actor.Username,
	)
	return nil
}
