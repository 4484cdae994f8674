package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/localbites/localbites-services/api/internal/application"
	"github.com/localbites/localbites-services/api/internal/config"
	mongodoc "github.com/localbites/localbites-services/api/internal/infrastructure/mongo"
	commonhttp "github.com/localbites/localbites-services/api/internal/interfaces/http/common"
	publichttp "github.com/localbites/localbites-services/api/internal/interfaces/http/public"
)

// Server は HTTP サーバーのライフサイクルを管理し、各ハンドラへ依存注入するコンポジションルート。
// アプリケーションサービスをルータへ接続する責務を担う。
type Server struct {
	logger          *log.Logger
	client          *mongo.Client
	database        *mongo.Database
	storeService    application.StoreService
	reviewService   application.ReviewService
	favoriteService application.FavoriteService
	flash           *publichttp.FlashCodec
	photos          *publichttp.PhotoStore
	renderer        publichttp.Renderer
	jwtConfigs      []config.JWTConfig
	jwtAudience     string
	addr            string
	publicDir       string
	allowedOrigins  []string
	collections     collectionNames
}

type collectionNames struct {
	stores  string
	reviews string
	users   string
}

type authenticatedUser = commonhttp.AuthenticatedUser

// sessionCookieName はブラウザフロー向けのアクセストークン格納クッキー。
const sessionCookieName = "lb_session"

// Run はHTTPサーバーを起動し、ルーティングやミドルウェアを組み立てる。
// インフラ初期化に限定し、ドメインロジックをここに書かないことで層の責務を守る。
func (s *Server) Run() error {
	if err := s.ensureIndexes(context.Background()); err != nil {
		s.logger.Printf("インデックス作成に失敗しました: %v", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	fileServer := http.FileServer(http.Dir(s.publicDir))
	router.Handle("/public/*", http.StripPrefix("/public/", fileServer))

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:    s.logger,
		Stores:    s.storeService,
		Reviews:   s.reviewService,
		Favorites: s.favoriteService,
		Renderer:  s.renderer,
		Flash:     s.flash,
		Photos:    s.photos,
	})
	publicHandler.Register(router, s.authMiddleware)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

// ensureIndexes は起動時に各コレクションのインデックスを保証する。
func (s *Server) ensureIndexes(ctx context.Context) error {
	if err := mongodoc.EnsureStoreIndexes(ctx, s.database, s.collections.stores); err != nil {
		return err
	}
	if err := mongodoc.EnsureReviewIndexes(ctx, s.database, s.collections.reviews); err != nil {
		return err
	}
	return mongodoc.EnsureUserIndexes(ctx, s.database, s.collections.users)
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB への疎通確認を行い、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーまたはセッションクッキーから JWT を検証し、
// 認証済みユーザーをコンテキストへ詰める。未認証の場合、ブラウザフローは
// フラッシュ付きでトップへ戻し、/api 配下は 401 JSON を返す。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				tokenString = strings.TrimSpace(cookie.Value)
			}
		}
		if tokenString == "" {
			s.rejectUnauthenticated(w, r, "アクセストークンがありません")
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			s.rejectUnauthenticated(w, r, err.Error())
			return
		}

		user := authenticatedUser{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Email,
		}

		ctx := commonhttp.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken は Authorization ヘッダーから Bearer トークンを取り出す。
func bearerToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
}

func (s *Server) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, reason string) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": reason})
		return
	}

	s.flash.Set(w, r, publichttp.FlashError, "Oops you must be logged in to do that!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// parseAuthToken は複数の JWT 設定を順番に試し、署名検証と Issuer/Audience の整合性を確認する。
// いずれの設定にも一致しない場合は認証エラーを返す。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, fmt.Errorf("認証設定が構成されていません")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			continue
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}

		now := time.Now()
		if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
			continue
		}
		if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !contains(claims.Audience, s.jwtAudience) {
			continue
		}

		return claims, nil
	}

	return nil, fmt.Errorf("アクセストークンが無効です")
}

// contains は Audience 等の検証で利用する単純な包含チェック。
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type authClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// writeJSON は JSON レスポンスの共通書き込み処理。
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断し、プロセス終了時のリソースリークを防ぐ。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("サーバーが異常終了: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
}

// New は Config と Mongo クライアントを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
// 依存解決の起点となるファクトリとして機能する。
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	database := client.Database(cfg.MongoDatabase)

	storeRepo := mongodoc.NewStoreRepository(database, cfg.StoreCollection, cfg.ReviewCollection)
	reviewRepo := mongodoc.NewReviewRepository(database, cfg.ReviewCollection, cfg.StoreCollection)
	userRepo := mongodoc.NewUserRepository(database, cfg.UserCollection)

	renderer, err := publichttp.NewTemplateRenderer(cfg.TemplatesGlob)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	photos, err := publichttp.NewPhotoStore(cfg.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("prepare uploads dir: %w", err)
	}

	srv := &Server{
		logger:          cfg.ServerLog,
		client:          client,
		database:        database,
		storeService:    application.NewStoreService(storeRepo, reviewRepo, userRepo, application.DefaultPageSize),
		reviewService:   application.NewReviewService(reviewRepo, storeRepo),
		favoriteService: application.NewFavoriteService(userRepo, storeRepo),
		flash:           publichttp.NewFlashCodec(cfg.FlashCookieSecret, cfg.FlashCookieSecure),
		photos:          photos,
		renderer:        renderer,
		jwtConfigs:      append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:     cfg.JWTAudience,
		addr:            cfg.Addr,
		publicDir:       cfg.PublicDir,
		allowedOrigins:  append([]string(nil), cfg.AllowedOrigins...),
		collections: collectionNames{
			stores:  cfg.StoreCollection,
			reviews: cfg.ReviewCollection,
			users:   cfg.UserCollection,
		},
	}

	return srv, nil
}
