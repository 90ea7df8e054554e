package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dare_webapp/internal/logger"
	"dare_webapp/internal/service"
)

// discardUploads removes objects stored for a submission that was
// ultimately rejected, so no orphaned files outlive the request.
func (h *Handler) discardUploads(ctx context.Context, keys []string) {
	if h.ProofFiles == nil {
		return
	}
	for _, key := range keys {
		if err := h.ProofFiles.Delete(ctx, key); err != nil {
			logger.Error("discarding rejected proof upload failed", "key", key, "error", err)
		}
	}
}

func gameID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return 0, false
	}
	return id, true
}

// CreateSwitch starts a new game with the creator's dare.
func (h *Handler) CreateSwitch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Description     string `json:"description"`
		Difficulty      string `json:"difficulty"`
		Public          bool   `json:"public"`
		ContentDeletion string `json:"content_deletion"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	g, err := h.Switches.Create(c.Request.Context(), userID, service.CreateGameInput{
		Description:     req.Description,
		Difficulty:      req.Difficulty,
		Public:          req.Public,
		ContentDeletion: req.ContentDeletion,
	})
	if err != nil {
		respondError(c, err, 0, userID)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// ListSwitches returns public games for discovery.
func (h *Handler) ListSwitches(c *gin.Context) {
	userID, _ := getUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	games, err := h.Switches.ListPublic(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, 0, userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// MySwitches returns the caller's games.
func (h *Handler) MySwitches(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	games, err := h.Switches.ListMine(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, 0, userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// GetSwitch returns one game, proof redacted for the viewer.
func (h *Handler) GetSwitch(c *gin.Context) {
	userID, _ := getUserID(c)
	id, ok := gameID(c)
	if !ok {
		return
	}

	g, err := h.Switches.Get(c.Request.Context(), id, userID, h.isAdmin(c, userID))
	if err != nil {
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, g)
}

// JoinSwitch admits the caller as the second player.
func (h *Handler) JoinSwitch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	var req struct {
		Description string `json:"description"`
		Difficulty  string `json:"difficulty"`
		Consent     bool   `json:"consent"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	g, err := h.Switches.Join(c.Request.Context(), id, userID, service.JoinGameInput{
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Consent:     req.Consent,
	})
	if err != nil {
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, g)
}

// ClaimSwitch joins a game through its shareable claim token.
func (h *Handler) ClaimSwitch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	token := c.Param("token")

	var req struct {
		Description string `json:"description"`
		Difficulty  string `json:"difficulty"`
		Consent     bool   `json:"consent"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	g, err := h.Switches.Claim(c.Request.Context(), token, userID, service.JoinGameInput{
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Consent:     req.Consent,
	})
	if err != nil {
		respondError(c, err, 0, userID)
		return
	}
	c.JSON(http.StatusOK, g)
}

// SubmitMove records the caller's rock/paper/scissors move.
func (h *Handler) SubmitMove(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	var req struct {
		Move string `json:"move"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	g, err := h.Switches.SubmitMove(c.Request.Context(), id, userID, req.Move)
	if err != nil {
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, g)
}

// ChickenOut forfeits the game before resolution.
func (h *Handler) ChickenOut(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	g, err := h.Switches.ChickenOut(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, g)
}

// SubmitProof uploads proof files (multipart) and records the proof.
func (h *Handler) SubmitProof(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	// reject ineligible callers before touching object storage
	if err := h.Switches.CanSubmitProof(c.Request.Context(), id, userID); err != nil {
		respondError(c, err, id, userID)
		return
	}

	text := c.PostForm("text")
	var fileKeys []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["files"]
		if len(files) > 0 && h.ProofFiles == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file uploads are not enabled"})
			return
		}
		for _, fh := range files {
			key, err := h.ProofFiles.Upload(c.Request.Context(), id, fh)
			if err != nil {
				h.discardUploads(c.Request.Context(), fileKeys)
				respondError(c, err, id, userID)
				return
			}
			fileKeys = append(fileKeys, key)
		}
	}

	g, err := h.Switches.SubmitProof(c.Request.Context(), id, userID, service.SubmitProofInput{
		Text:     text,
		FileKeys: fileKeys,
	})
	if err != nil {
		// the game moved between the pre-check and now; the keys were
		// never persisted, so clean them up here
		h.discardUploads(c.Request.Context(), fileKeys)
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": g.Status, "proof": g.Proof})
}

// ViewProof returns proof content to the winner, loser or an admin.
func (h *Handler) ViewProof(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	proof, err := h.Switches.ViewProof(c.Request.Context(), id, userID, h.isAdmin(c, userID))
	if err != nil {
		respondError(c, err, id, userID)
		return
	}

	var urls []string
	if h.ProofFiles != nil {
		for _, key := range proof.FileKeys {
			urls = append(urls, h.ProofFiles.URL(key))
		}
	}
	c.JSON(http.StatusOK, gin.H{"proof": proof, "file_urls": urls})
}

// ReviewProof records the winner's verdict on the submitted proof.
func (h *Handler) ReviewProof(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	var req struct {
		Action   string `json:"action"`
		Feedback string `json:"feedback"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	g, err := h.Switches.ReviewProof(c.Request.Context(), id, userID, service.ReviewProofInput{
		Action:   req.Action,
		Feedback: req.Feedback,
	})
	if err != nil {
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GradeSwitch records a 1-5 grade from one of the players.
func (h *Handler) GradeSwitch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	var req struct {
		Grade    int    `json:"grade"`
		Feedback string `json:"feedback"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	g, err := h.Switches.Grade(c.Request.Context(), id, userID, service.GradeInput{
		Grade:    req.Grade,
		Feedback: req.Feedback,
	})
	if err != nil {
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grades": g.Grades})
}

// LikeSwitch toggles the caller's like.
func (h *Handler) LikeSwitch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := gameID(c)
	if !ok {
		return
	}

	liked, err := h.Switches.ToggleLike(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, id, userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// isAdmin checks the caller's role. Lookup failures just mean "not an
// admin" here; the operation itself decides what the caller may do.
func (h *Handler) isAdmin(c *gin.Context, userID int64) bool {
	if userID == 0 {
		return false
	}
	u, err := h.Auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsAdmin()
}
