// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rosterd Contributors

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/rosterd/rosterd/internal/students"
)

type studentRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

func (r studentRequest) input() students.Input {
	return students.Input{
		Name:   r.Name,
		Age:    r.Age,
		Gender: students.Gender(r.Gender),
	}
}

type studentResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

func toStudentResponse(st *students.Student) studentResponse {
	return studentResponse{
		ID:     st.ID.String(),
		Name:   st.Name,
		Age:    st.Age,
		Gender: string(st.Gender),
	}
}

// studentID parses the :id path parameter. A malformed ID is reported as
// not found rather than a parse error: the resource address simply does
// not exist.
func studentID(c *gin.Context) (ulid.ULID, bool) {
	id, err := ulid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "STUDENT_NOT_FOUND",
			"message": "student not found",
		})
		return ulid.ULID{}, false
	}
	return id, true
}

func (s *Server) handleListStudents(c *gin.Context) {
	list, err := s.studentSvc.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]studentResponse, 0, len(list))
	for _, st := range list {
		out = append(out, toStudentResponse(st))
	}
	c.JSON(http.StatusOK, gin.H{"students": out})
}

func (s *Server) handleGetStudent(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}

	st, err := s.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStudentResponse(st))
}

func (s *Server) handleCreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "STUDENT_INVALID_INPUT",
			"message": "request body must be JSON with name, age and gender",
		})
		return
	}

	st, err := s.studentSvc.Create(c.Request.Context(), identityFrom(c), req.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStudentResponse(st))
}

func (s *Server) handleUpdateStudent(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}

	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "STUDENT_INVALID_INPUT",
			"message": "request body must be JSON with name, age and gender",
		})
		return
	}

	st, err := s.studentSvc.Update(c.Request.Context(), identityFrom(c), id, req.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStudentResponse(st))
}

func (s *Server) handleDeleteStudent(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}

	if err := s.studentSvc.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
