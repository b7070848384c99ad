package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/logging"
)

// ServerConfig configures the development backend.
type ServerConfig struct {
	Addr         string
	Admins       []backend.Principal
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       logging.Logger
}

// DefaultServerConfig returns the settings used by the zenlinkd binary.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:         ":8788",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is a self-contained backend for local development. It speaks the
// same operation protocol as the production service but keeps all state in
// memory.
type Server struct {
	store  *Store
	engine *gin.Engine
	http   *http.Server
	hub    *feedHub
	logger logging.Logger

	upgrader websocket.Upgrader
}

// NewServer wires the routes and middleware. Call Start to begin serving.
func NewServer(cfg *ServerConfig) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	logger := logging.OrNop(cfg.Logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowWebSockets = true
	engine.Use(cors.New(corsConfig))

	s := &Server{
		store:  NewStore(cfg.Admins...),
		engine: engine,
		hub:    newFeedHub(logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.registerRoutes()
	return s
}

// Store exposes the in-memory state, mainly for seeding in tests.
func (s *Server) Store() *Store { return s.store }

// Handler returns the HTTP handler, for mounting under httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("development backend listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("devserver: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes feed subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	return s.http.Shutdown(ctx)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// caller extracts the principal from the bearer token. The development
// protocol is deliberately simple: the token is the principal itself.
func (s *Server) caller(c *gin.Context) (backend.Principal, bool) {
	auth := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" || token == auth {
		return "", false
	}
	p, err := backend.ParsePrincipal(token)
	if err != nil {
		return "", false
	}
	return p, true
}

func (s *Server) requireCaller(c *gin.Context) (backend.Principal, bool) {
	p, ok := s.caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
	}
	return p, ok
}

func (s *Server) requireAdmin(c *gin.Context) (backend.Principal, bool) {
	p, ok := s.requireCaller(c)
	if !ok {
		return "", false
	}
	if s.store.Role(p) != backend.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return "", false
	}
	return p, true
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/getCallerUserProfile", s.handleGetCallerUserProfile)
	api.POST("/saveCallerUserProfile", s.handleSaveCallerUserProfile)
	api.POST("/getUserProfile", s.handleGetUserProfile)
	api.POST("/getAllUserProfiles", s.handleGetAllUserProfiles)

	api.POST("/submitWeeklyMoment", s.handleSubmitWeeklyMoment)
	api.POST("/getTopMoments", s.handleGetTopMoments)
	api.POST("/incrementImpact", s.handleIncrementImpact)
	api.POST("/removeMoment", s.handleRemoveMoment)

	api.POST("/getDailyChallenges", s.handleGetDailyChallenges)
	api.POST("/completeDailyChallenge", s.handleCompleteDailyChallenge)
	api.POST("/getWeeklyChallenges", s.handleGetWeeklyChallenges)
	api.POST("/completeWeeklyChallenge", s.handleCompleteWeeklyChallenge)

	api.POST("/getGlobalStats", s.handleGetGlobalStats)
	api.POST("/sendMessage", s.handleSendMessage)
	api.POST("/getConversation", s.handleGetConversation)
	api.POST("/postGlobalMessage", s.handlePostGlobalMessage)
	api.POST("/getGlobalChatFeed", s.handleGetGlobalChatFeed)
	api.POST("/getAvailableConnections", s.handleGetAvailableConnections)

	api.POST("/getCallerUserRole", s.handleGetCallerUserRole)
	api.POST("/isCallerAdmin", s.handleIsCallerAdmin)
	api.POST("/assignCallerUserRole", s.handleAssignCallerUserRole)
	api.POST("/getAdminStats", s.handleGetAdminStats)

	s.engine.GET("/ws/global", s.handleGlobalFeedSocket)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (s *Server) handleGetCallerUserProfile(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	profile, found := s.store.Profile(p)
	if !found {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleSaveCallerUserProfile(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	var profile backend.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SaveProfile(p, profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetUserProfile(c *gin.Context) {
	var args struct {
		User backend.Principal `json:"user"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, found := s.store.Profile(args.User)
	if !found {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleGetAllUserProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.AllProfiles())
}

func (s *Server) handleSubmitWeeklyMoment(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	var args struct {
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := s.store.SubmitMoment(p, args.Content, args.Category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetTopMoments(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.TopMoments(10))
}

func (s *Server) handleIncrementImpact(c *gin.Context) {
	if _, ok := s.requireCaller(c); !ok {
		return
	}
	var args struct {
		MomentID uint64 `json:"momentId"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.IncrementImpact(args.MomentID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleRemoveMoment(c *gin.Context) {
	if _, ok := s.requireAdmin(c); !ok {
		return
	}
	var args struct {
		MomentID uint64 `json:"momentId"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.RemoveMoment(args.MomentID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetDailyChallenges(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.DailyChallenges(p))
}

func (s *Server) handleCompleteDailyChallenge(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	var args struct {
		ChallengeID uint64 `json:"challengeId"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.CompleteDailyChallenge(p, args.ChallengeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetWeeklyChallenges(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.WeeklyChallenges(p))
}

func (s *Server) handleCompleteWeeklyChallenge(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	var args struct {
		ChallengeID uint64 `json:"challengeId"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.CompleteWeeklyChallenge(p, args.ChallengeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetGlobalStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.GlobalStats())
}

func (s *Server) handleSendMessage(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	var args struct {
		Receiver backend.Principal `json:"receiver"`
		Content  string            `json:"content"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SendMessage(p, args.Receiver, args.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetConversation(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	var args struct {
		Partner backend.Principal `json:"partner"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.store.Conversation(p, args.Partner))
}

func (s *Server) handlePostGlobalMessage(c *gin.Context) {
	p, ok := s.requireCaller(c)
	if !ok {
		return
	}
	var args struct {
		Content     string `json:"content"`
		Perspective string `json:"perspective"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := s.store.PostGlobalMessage(p, args.Content, args.Perspective)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.hub.broadcast(msg)
	c.Status(http.StatusOK)
}

func (s *Server) handleGetGlobalChatFeed(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.GlobalFeed())
}

func (s *Server) handleGetAvailableConnections(c *gin.Context) {
	p, _ := s.caller(c)
	c.JSON(http.StatusOK, s.store.AvailableConnections(p))
}

func (s *Server) handleGetCallerUserRole(c *gin.Context) {
	p, ok := s.caller(c)
	if !ok {
		c.JSON(http.StatusOK, backend.RoleGuest)
		return
	}
	c.JSON(http.StatusOK, s.store.Role(p))
}

func (s *Server) handleIsCallerAdmin(c *gin.Context) {
	p, ok := s.caller(c)
	c.JSON(http.StatusOK, ok && s.store.Role(p) == backend.RoleAdmin)
}

func (s *Server) handleAssignCallerUserRole(c *gin.Context) {
	if _, ok := s.requireAdmin(c); !ok {
		return
	}
	var args struct {
		User backend.Principal `json:"user"`
		Role backend.UserRole  `json:"role"`
	}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.AssignRole(args.User, args.Role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleGetAdminStats(c *gin.Context) {
	if _, ok := s.requireAdmin(c); !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.AdminStats())
}

func (s *Server) handleGlobalFeedSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	s.hub.add(conn)
	// Reader loop exists only to notice the peer going away.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
