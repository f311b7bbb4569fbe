package api

import (
	"net/http"
	"strconv"

	"github.com/okian/agora/internal/domain/types"
)

const defaultMaxLimit = 200

// MessagesHandler handles message read requests.
type MessagesHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(deps Dependencies, maxLimit int) *MessagesHandler {
	return &MessagesHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetMessages handles GET /messages?limit=N requests. Without a
// limit the full sequence is returned.
func (h *MessagesHandler) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_messages"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	var messages = h.deps.All(r.Context())
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
			return
		}
		if n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		messages = h.deps.Recent(r.Context(), n)
	}

	views := make([]types.MessageView, len(messages))
	for i, m := range messages {
		views[i] = messageView(m)
	}
	writeJSON(w, http.StatusOK, views)
}
