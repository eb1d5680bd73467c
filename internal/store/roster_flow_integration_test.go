// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rosterd/rosterd/internal/access"
	"github.com/rosterd/rosterd/internal/auth"
	authpg "github.com/rosterd/rosterd/internal/auth/postgres"
	"github.com/rosterd/rosterd/internal/store"
	"github.com/rosterd/rosterd/internal/students"
	studentspg "github.com/rosterd/rosterd/internal/students/postgres"
)

// setupRoster brings up a migrated database and wires the full service stack
// against it.
func setupRoster() (*auth.Service, *access.Gate, *students.Service, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rosterd_test"),
		postgres.WithUsername("rosterd"),
		postgres.WithPassword("rosterd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, nil, nil, err
	}
	_ = migrator.Close()

	var pool *pgxpool.Pool
	pool, err = store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	userRepo := authpg.NewUserRepository(pool)
	sessionRepo := authpg.NewSessionRepository(pool)
	studentRepo := studentspg.NewStudentRepository(pool)

	authSvc, err := auth.NewService(userRepo, sessionRepo, auth.NewArgon2idHasher(), time.Hour)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	gate, err := access.NewGate(authSvc, userRepo)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	studentSvc, err := students.NewService(studentRepo, nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}
	return authSvc, gate, studentSvc, cleanup, nil
}

var _ = Describe("Roster flow", Ordered, func() {
	var (
		authSvc    *auth.Service
		gate       *access.Gate
		studentSvc *students.Service
		cleanup    func()
		ctx        context.Context
	)

	BeforeAll(func() {
		var err error
		authSvc, gate, studentSvc, cleanup, err = setupRoster()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterAll(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	var adminToken string

	It("registers and logs in an account", func() {
		_, err := authSvc.Register(ctx, "principal", "a strong password")
		Expect(err).NotTo(HaveOccurred())

		session, token, err := authSvc.Login(ctx, "principal", "a strong password")
		Expect(err).NotTo(HaveOccurred())
		Expect(token).NotTo(BeEmpty())
		Expect(session.Username).To(Equal("principal"))
		adminToken = token
	})

	It("projects an identity through the gate", func() {
		identity, err := gate.Authenticate(ctx, adminToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.Authenticated).To(BeTrue())
		Expect(identity.Username).To(Equal("principal"))
	})

	It("manages students end to end", func() {
		identity, err := gate.Authenticate(ctx, adminToken)
		Expect(err).NotTo(HaveOccurred())

		created, err := studentSvc.Create(ctx, identity, students.Input{
			Name: "Grace Hopper", Age: 37, Gender: students.GenderFemale,
		})
		Expect(err).NotTo(HaveOccurred())

		got, err := studentSvc.GetByID(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("Grace Hopper"))

		updated, err := studentSvc.Update(ctx, identity, created.ID, students.Input{
			Name: "Grace Hopper", Age: 38, Gender: students.GenderFemale,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Age).To(Equal(38))

		Expect(studentSvc.Delete(ctx, identity, created.ID)).To(Succeed())

		_, err = studentSvc.GetByID(ctx, created.ID)
		Expect(err).To(MatchError(students.ErrNotFound))
	})

	It("ends the session on logout", func() {
		Expect(authSvc.Logout(ctx, adminToken)).To(Succeed())

		identity, err := gate.Authenticate(ctx, adminToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.Authenticated).To(BeFalse())
	})
})
