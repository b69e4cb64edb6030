package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/service"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Fixture 初始化数据：管理员账号与房源
type Fixture struct {
	Caretakers []model.CreateCaretakerRequest `yaml:"caretakers"`
	Units      []model.CreateUnitRequest      `yaml:"units"`
}

// Result 本次导入结果，已存在的记录计入 Skipped
type Result struct {
	CaretakersCreated int
	UnitsCreated      int
	Skipped           int
}

func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &fixture, nil
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Seeder 通过服务层写入，保持与接口相同的校验与审计
type Seeder struct {
	auth  *service.AuthService
	units *service.UnitService
	log   *logger.Logger
}

func NewSeeder(auth *service.AuthService, units *service.UnitService, log *logger.Logger) *Seeder {
	return &Seeder{auth: auth, units: units, log: log}
}

// Apply 可重复执行，重复的邮箱与房源号跳过
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) (Result, error) {
	var result Result

	for _, req := range fixture.Caretakers {
		_, err := s.auth.ProvisionCaretaker(ctx, req)
		if err != nil {
			if service.KindOf(err) == service.KindDuplicateEmail {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("caretaker %s: %w", req.Email, err)
		}
		result.CaretakersCreated++
	}

	for _, req := range fixture.Units {
		_, err := s.units.Create(ctx, model.Actor{}, req)
		if err != nil {
			if service.KindOf(err) == service.KindDuplicateUnitKey {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("unit %s/%s: %w", req.Building, req.UnitNumber, err)
		}
		result.UnitsCreated++
	}

	s.log.Info("Seed applied",
		zap.Int("caretakers", result.CaretakersCreated),
		zap.Int("units", result.UnitsCreated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
