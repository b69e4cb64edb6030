package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/constants"
	"github.com/taichu-system/tenancy-management/internal/database"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"github.com/taichu-system/tenancy-management/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 身份认证与会话校验
type AuthService struct {
	userRepo   *repository.UserRepository
	sessions   session.Store
	audit      *AuditService
	log        *logger.Logger
	secretKey  []byte
	issuer     string
	sessionTTL time.Duration
	bcryptCost int
	dummyHash  []byte
	now        func() time.Time
}

// SessionClaims 令牌声明，jti 为服务端会话ID
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(userRepo *repository.UserRepository, sessions session.Store, audit *AuditService, cfg config.AuthConfig, log *logger.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour // 默认24小时
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "tenancy-management"
	}

	// 未知邮箱时也做一次比较，避免通过响应时间区分账号是否存在
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("tenancy-dummy-password"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	return &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		audit:      audit,
		log:        log,
		secretKey:  []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		sessionTTL: cfg.SessionTTL,
		bcryptCost: cfg.BcryptCost,
		dummyHash:  dummyHash,
		now:        time.Now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return validationError("email %q is not a valid address", email)
	}
	return nil
}

// HashPassword 生成密码哈希
func (s *AuthService) HashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", validationError("password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", &Error{Kind: KindInternal, Message: "failed to hash password", Err: err}
	}
	return string(hashed), nil
}

// Authenticate 校验邮箱密码并创建会话
func (s *AuthService) Authenticate(ctx context.Context, email, password string, meta model.RequestMeta) (*model.AuthResponse, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeError("look up user", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.audit.Record(ctx, model.Actor{IPAddress: meta.IPAddress, UserAgent: meta.UserAgent},
			constants.AuditActionLogin, constants.ResourceTypeUser, "", map[string]interface{}{"email": email}, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	actor := model.Actor{UserID: user.ID, Role: user.Role, IPAddress: meta.IPAddress, UserAgent: meta.UserAgent}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit.Record(ctx, actor, constants.AuditActionLogin, constants.ResourceTypeUser, user.ID.String(), nil, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	// 密码正确后才判断是否停用
	if !user.IsActive {
		s.audit.Record(ctx, actor, constants.AuditActionLogin, constants.ResourceTypeUser, user.ID.String(), nil, ErrAccountInactive)
		return nil, ErrAccountInactive
	}

	now := s.now().UTC()
	sess := &model.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: now.Add(s.sessionTTL),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, storeError("create session", err)
	}

	token, err := s.signToken(sess)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "failed to issue session token", Err: err}
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.WarnContext(ctx, "Failed to update last login time", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	user.LastLoginAt = &now

	s.audit.Record(ctx, actor, constants.AuditActionLogin, constants.ResourceTypeSession, sess.ID.String(), nil, nil)
	s.log.InfoContext(ctx, "User logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))

	return &model.AuthResponse{
		Token:     token,
		Role:      user.Role,
		ExpiresAt: sess.ExpiresAt,
		User:      user.View(),
	}, nil
}

func (s *AuthService) signToken(sess *model.Session) (string, error) {
	claims := SessionClaims{
		Role: string(sess.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID.String(),
			Subject:   sess.UserID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ResolveSession 将令牌解析为服务端会话
func (s *AuthService) ResolveSession(ctx context.Context, tokenString string) (*model.Session, error) {
	if tokenString == "" {
		return nil, ErrSessionInvalid
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, storeError("load session", err)
	}

	if sess.Revoked() || sess.UserID.String() != claims.Subject {
		return nil, ErrSessionInvalid
	}
	if sess.Expired(s.now()) {
		return nil, ErrSessionExpired
	}

	// 账号停用后即使会话吊销失败也不能继续使用
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, storeError("load user", err)
	}
	if !user.IsActive {
		if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
			s.log.WarnContext(ctx, "Failed to revoke session of inactive user",
				zap.String("session_id", sess.ID.String()), zap.Error(err))
		}
		return nil, ErrSessionInvalid
	}

	return sess, nil
}

// Authorize 校验会话角色是否在允许列表中
func (s *AuthService) Authorize(sess *model.Session, allowed ...model.Role) error {
	if sess == nil {
		return ErrSessionInvalid
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if sess.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// Logout 吊销当前会话
func (s *AuthService) Logout(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return ErrSessionInvalid
	}
	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return storeError("revoke session", err)
	}
	s.audit.Record(ctx, sess.Actor(), constants.AuditActionLogout, constants.ResourceTypeSession, sess.ID.String(), nil, nil)
	return nil
}

// RevokeUserSessions 吊销用户的全部会话
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.sessions.RevokeUser(ctx, userID)
	if err != nil {
		return 0, storeError("revoke user sessions", err)
	}
	return n, nil
}

// CurrentUser 返回会话对应的用户
func (s *AuthService) CurrentUser(ctx context.Context, sess *model.Session) (*model.UserView, error) {
	if sess == nil {
		return nil, ErrSessionInvalid
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, storeError("load user", err)
	}
	return user.View(), nil
}

// ProvisionCaretaker 创建管理员账号
func (s *AuthService) ProvisionCaretaker(ctx context.Context, req model.CreateCaretakerRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, email, uuid.Nil)
	if err != nil {
		return nil, storeError("check email", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleCaretaker,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, storeError("create caretaker", err)
	}

	s.audit.Record(ctx, model.Actor{}, constants.AuditActionCreate, constants.ResourceTypeUser, user.ID.String(),
		map[string]interface{}{"role": string(model.RoleCaretaker), "email": email}, nil)
	s.log.InfoContext(ctx, "Caretaker provisioned", zap.String("user_id", user.ID.String()))
	return user, nil
}
