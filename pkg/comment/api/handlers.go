package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"feedback/pkg/comment"
	"feedback/pkg/common"
	"feedback/pkg/logger"
)

type (
	CommentRepo interface {
		Add(ctx context.Context, tx comment.DBTX, text string) (*comment.Comment, error)
		GetActive(ctx context.Context, tx comment.DBTX) ([]*comment.Comment, error)
		SoftDeleteAll(ctx context.Context, tx comment.DBTX) (int64, error)
		SoftDeleteOne(ctx context.Context, tx comment.DBTX, id int64) error
	}

	SessionManager interface {
		WithSession(ctx context.Context, fn func(tx *sql.Tx) error) error
	}

	CommentHandler struct {
		Repo     CommentRepo
		Sessions SessionManager
		validate *validator.Validate
	}

	CreateCommentRequest struct {
		Text string `json:"text" validate:"required"`
	}
)

func NewCommentHandler(repo CommentRepo, sm SessionManager) *CommentHandler {
	return &CommentHandler{
		Repo:     repo,
		Sessions: sm,
		validate: validator.New(),
	}
}

func (ch *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req := new(CreateCommentRequest)
	if err := common.ParseReqBody(r.Body, req); err != nil {
		logger.Log(r.Context()).Errorf("can't parse comment from request body: %v", err)
		common.WriteErr(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}
	if err := ch.validate.Struct(req); err != nil {
		logger.Log(r.Context()).Errorf("comment body failed validation: %v", err)
		common.WriteErr(w, "text must be a non-empty string", http.StatusUnprocessableEntity)
		return
	}

	var cmt *comment.Comment
	err := ch.Sessions.WithSession(r.Context(), func(tx *sql.Tx) error {
		var addErr error
		cmt, addErr = ch.Repo.Add(r.Context(), tx, req.Text)
		return addErr
	})
	if errors.Is(err, comment.ErrConflict) {
		logger.Log(r.Context()).Errorf("can't add comment: %v", err)
		common.WriteErr(w, "comment already exists", http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("can't add comment: %v", err)
		common.WriteErr(w, "internal server error", http.StatusInternalServerError)
		return
	}

	common.WriteRespJSON(w, cmt)
}

func (ch *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	comments := []*comment.Comment{}
	err := ch.Sessions.WithSession(r.Context(), func(tx *sql.Tx) error {
		var getErr error
		comments, getErr = ch.Repo.GetActive(r.Context(), tx)
		return getErr
	})
	if err != nil {
		logger.Log(r.Context()).Errorf("can't load comments from the repo: %v", err)
		common.WriteErr(w, "internal server error", http.StatusInternalServerError)
		return
	}

	common.WriteRespJSON(w, comments)
}

func (ch *CommentHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var affected int64
	err := ch.Sessions.WithSession(r.Context(), func(tx *sql.Tx) error {
		var delErr error
		affected, delErr = ch.Repo.SoftDeleteAll(r.Context(), tx)
		return delErr
	})
	if err != nil {
		logger.Log(r.Context()).Errorf("can't soft delete comments: %v", err)
		common.WriteErr(w, "internal server error", http.StatusInternalServerError)
		return
	}

	logger.Log(r.Context()).Infof("soft deleted %d comments", affected)
	common.WriteMsg(w, "Comments soft deleted", http.StatusOK)
}

func (ch *CommentHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		// The route only matches digits; an overflowing id still ends
		// up here and no such row can exist.
		common.WriteErr(w, "Comment not found", http.StatusNotFound)
		return
	}

	err = ch.Sessions.WithSession(r.Context(), func(tx *sql.Tx) error {
		return ch.Repo.SoftDeleteOne(r.Context(), tx, id)
	})
	if errors.Is(err, comment.ErrNotFound) {
		common.WriteErr(w, "Comment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("can't soft delete comment %d: %v", id, err)
		common.WriteErr(w, "internal server error", http.StatusInternalServerError)
		return
	}

	common.WriteMsg(w, fmt.Sprintf("Comment %d soft deleted", id), http.StatusOK)
}
