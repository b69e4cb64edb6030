package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/constants"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"go.uber.org/zap"
)

type AuditService struct {
	auditRepo *repository.AuditRepository
	log       *logger.Logger
}

func NewAuditService(auditRepo *repository.AuditRepository, log *logger.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

// Record 记录一次操作，审计写入失败只记日志不影响业务结果
func (s *AuditService) Record(ctx context.Context, actor model.Actor, action, resource, resourceID string, details map[string]interface{}, opErr error) {
	auditEvent := &model.AuditEvent{
		ActorRole:  string(actor.Role),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Details:    details,
		Result:     constants.AuditResultSuccess,
	}
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		auditEvent.ActorID = &id
	}
	if opErr != nil {
		auditEvent.Result = constants.AuditResultFailed
		auditEvent.ErrorMsg = opErr.Error()
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.auditRepo.Create(ctx, auditEvent); err != nil {
		s.log.WarnContext(ctx, "Failed to record audit event",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("resource_id", resourceID),
			zap.Error(err))
	}
}

func (s *AuditService) List(ctx context.Context, params repository.AuditListParams) ([]*model.AuditEvent, int64, error) {
	events, total, err := s.auditRepo.List(ctx, params)
	if err != nil {
		return nil, 0, storeError("list audit events", err)
	}
	return events, total, nil
}
