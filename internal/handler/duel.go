package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/duel"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

const (
	defaultListLimit    = 20
	maxListLimit        = 100
	defaultCommentLimit = 50
	maxCommentLimit     = 200
)

// Nudger requests an opportunistic janitor sweep
type Nudger interface {
	Nudge() bool
}

type DuelHandler struct {
	service duel.Service
	janitor Nudger
}

func NewDuelHandler(service duel.Service, janitor Nudger) *DuelHandler {
	return &DuelHandler{
		service: service,
		janitor: janitor,
	}
}

// ChallengeRequest represents a duel challenge request
type ChallengeRequest struct {
	TopicID         string `json:"topic_id" validate:"required,uuid"`
	ChallengedID    string `json:"challenged_id" validate:"required,uuid"`
	ChallengerSide  string `json:"challenger_side" validate:"required,side"`
	DurationSeconds int    `json:"duration_seconds" validate:"required,min=1"`
}

// RespondRequest answers a pending challenge
type RespondRequest struct {
	Action          string `json:"action" validate:"required,oneof=accept decline counter"`
	DurationSeconds int    `json:"duration_seconds" validate:"omitempty,min=1"`
}

// GroundRequest submits one argument
type GroundRequest struct {
	Text string `json:"text" validate:"required"`
}

// CommentRequest posts an observer comment
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// HideRequest toggles a duel's moderation flag
type HideRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

// DuelResponse wraps a duel with a short message
type DuelResponse struct {
	Message string       `json:"message,omitempty"`
	Duel    *domain.Duel `json:"duel"`
}

// CommentsResponse is a page of observer comments
type CommentsResponse struct {
	Comments []domain.ObserverComment `json:"comments"`
}

func (h *DuelHandler) nudge() {
	if h.janitor != nil {
		h.janitor.Nudge()
	}
}

// HandleList lists duels
// @Summary List duels
// @Description Pages through duels. Hidden duels are only listed for admin callers.
// @Tags duels
// @Produce json
// @Param topic_id query string false "Topic filter"
// @Param status query string false "pending, active, completed, declined or expired"
// @Param participant_id query string false "Participant filter"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} domain.DuelPage
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/duels [get]
func (h *DuelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	topicID, ok := GetOptionalUUIDParam(r, w, "topic_id")
	if !ok {
		return
	}
	participantID, ok := GetOptionalUUIDParam(r, w, "participant_id")
	if !ok {
		return
	}
	limit, offset, ok := GetPagination(r, w, defaultListLimit, maxListLimit)
	if !ok {
		return
	}

	filter := domain.DuelFilter{
		TopicID:       topicID,
		ParticipantID: participantID,
		IncludeHidden: IsAdmin(r.Context()),
		Limit:         limit,
		Offset:        offset,
	}
	if status := GetOptionalQueryParam(r, "status", ""); status != "" {
		s := domain.DuelStatus(status)
		filter.Status = &s
	}

	h.nudge()

	page, err := h.service.ListDuels(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, ErrMsgListDuelsFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// HandleChallenge creates a pending challenge
// @Summary Challenge a user
// @Tags duels
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param request body ChallengeRequest true "Challenge"
// @Success 201 {object} DuelResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Topic not found"
// @Failure 409 {object} ErrorResponse "Duel limit reached"
// @Router /api/v1/duels [post]
func (h *DuelHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetActorID(r, w)
	if !ok {
		return
	}

	var req ChallengeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Challenge duel"); err != nil {
		return
	}

	d, err := h.service.Challenge(r.Context(), actorID, duel.ChallengeRequest{
		TopicID:         uuid.MustParse(req.TopicID),
		ChallengedID:    uuid.MustParse(req.ChallengedID),
		ChallengerSide:  domain.Side(req.ChallengerSide),
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		respondServiceError(w, r, ErrMsgChallengeFailed, err)
		return
	}

	logger.FromContext(r.Context()).Info("Duel challenge created", "duel_id", d.ID, "challenger", actorID)
	respondJSON(w, http.StatusCreated, DuelResponse{Message: MsgChallengeSent, Duel: d})
}

// HandleGet returns a duel snapshot
// @Summary Get duel
// @Description Returns the duel, its topic, the full argument log and the live HP of the turn holder
// @Tags duels
// @Produce json
// @Param id path string true "Duel ID"
// @Success 200 {object} domain.DuelSnapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/duels/{id} [get]
func (h *DuelHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	h.nudge()

	snap, err := h.service.GetDuel(r.Context(), duelID)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetDuelFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleRespond accepts, declines or counters a pending challenge
// @Summary Respond to a challenge
// @Tags duels
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Duel ID"
// @Param request body RespondRequest true "Response"
// @Success 200 {object} DuelResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/duels/{id}/respond [post]
func (h *DuelHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetActorID(r, w)
	if !ok {
		return
	}
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	var req RespondRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Respond to duel"); err != nil {
		return
	}

	d, err := h.service.Respond(r.Context(), actorID, duelID, duel.Action(req.Action), req.DurationSeconds)
	if err != nil {
		respondServiceError(w, r, ErrMsgRespondFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, DuelResponse{Duel: d})
}

// HandleGround submits an argument on the actor's turn
// @Summary Submit an argument
// @Description Judges the argument and applies penalties. Returns the updated duel and the new log entries.
// @Tags duels
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Duel ID"
// @Param request body GroundRequest true "Argument"
// @Success 200 {object} duel.TurnResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not your turn"
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/duels/{id}/grounds [post]
func (h *DuelHandler) HandleGround(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetActorID(r, w)
	if !ok {
		return
	}
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	var req GroundRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Submit ground"); err != nil {
		return
	}

	res, err := h.service.SubmitGround(r.Context(), actorID, duelID, req.Text)
	if err != nil {
		respondServiceError(w, r, ErrMsgSubmitGroundFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// HandleResign concedes the duel
// @Summary Resign
// @Tags duels
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Duel ID"
// @Success 200 {object} DuelResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/duels/{id}/resign [post]
func (h *DuelHandler) HandleResign(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetActorID(r, w)
	if !ok {
		return
	}
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	d, err := h.service.Resign(r.Context(), actorID, duelID)
	if err != nil {
		respondServiceError(w, r, ErrMsgResignFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, DuelResponse{Message: MsgDuelResigned, Duel: d})
}

// HandleClaimTimeout ends the duel if the turn holder's clock ran out
// @Summary Claim clock exhaustion
// @Tags duels
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Duel ID"
// @Success 200 {object} DuelResponse
// @Failure 409 {object} ErrorResponse "Clock still running"
// @Router /api/v1/duels/{id}/timeout [post]
func (h *DuelHandler) HandleClaimTimeout(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetActorID(r, w)
	if !ok {
		return
	}
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	d, err := h.service.ClaimTimeout(r.Context(), actorID, duelID)
	if err != nil {
		respondServiceError(w, r, ErrMsgClaimTimeoutFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, DuelResponse{Message: MsgDuelEnded, Duel: d})
}

// HandleListComments lists observer comments
// @Summary List comments
// @Tags comments
// @Produce json
// @Param id path string true "Duel ID"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {object} CommentsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/duels/{id}/comments [get]
func (h *DuelHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}
	limit, offset, ok := GetPagination(r, w, defaultCommentLimit, maxCommentLimit)
	if !ok {
		return
	}

	comments, err := h.service.ListComments(r.Context(), duelID, limit, offset)
	if err != nil {
		respondServiceError(w, r, ErrMsgListCommentsFailed, err)
		return
	}
	if comments == nil {
		comments = []domain.ObserverComment{}
	}
	respondJSON(w, http.StatusOK, CommentsResponse{Comments: comments})
}

// HandleAddComment posts an observer comment
// @Summary Add comment
// @Tags comments
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Duel ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} domain.ObserverComment
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/duels/{id}/comments [post]
func (h *DuelHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	actorID, ok := GetActorID(r, w)
	if !ok {
		return
	}
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	var req CommentRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add comment"); err != nil {
		return
	}

	c, err := h.service.AddComment(r.Context(), actorID, duelID, req.Text)
	if err != nil {
		respondServiceError(w, r, ErrMsgAddCommentFailed, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// HandleForceEnd ends an active duel without a winner
// @Summary Force end a duel
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Duel ID"
// @Success 200 {object} DuelResponse
// @Failure 409 {object} ErrorResponse "Duel is not active"
// @Router /api/v1/admin/duels/{id}/force-end [post]
func (h *DuelHandler) HandleForceEnd(w http.ResponseWriter, r *http.Request) {
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	d, err := h.service.ForceEnd(r.Context(), duelID)
	if err != nil {
		respondServiceError(w, r, ErrMsgForceEndFailed, err)
		return
	}

	logger.FromContext(r.Context()).Info("Duel force ended by admin", "duel_id", duelID)
	respondJSON(w, http.StatusOK, DuelResponse{Message: MsgDuelEnded, Duel: d})
}

// HandleHide sets a duel's hidden flag
// @Summary Hide or unhide a duel
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Duel ID"
// @Param request body HideRequest true "Visibility"
// @Success 200 {object} DuelResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/duels/{id}/hide [post]
func (h *DuelHandler) HandleHide(w http.ResponseWriter, r *http.Request) {
	duelID, ok := GetDuelID(r, w)
	if !ok {
		return
	}

	var req HideRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Hide duel"); err != nil {
		return
	}

	d, err := h.service.SetHidden(r.Context(), duelID, *req.Hidden)
	if err != nil {
		respondServiceError(w, r, ErrMsgHideFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, DuelResponse{Duel: d})
}
