package service

import (
	"fmt"
	"strings"

	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"

	"github.com/shopspring/decimal"
)

// PackService 包裹目录管理。
type PackService struct {
	packs repository.OrderPackListRepository
}

// NewPackService 创建包裹目录服务
func NewPackService(packs repository.OrderPackListRepository) *PackService {
	return &PackService{packs: packs}
}

// PackInput 创建/更新包裹输入。
type PackInput struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	WeightKG  string `json:"weight_kg"`
	LengthCM  int    `json:"length_cm"`
	WidthCM   int    `json:"width_cm"`
	HeightCM  int    `json:"height_cm"`
	Active    *bool  `json:"active"`
	SortOrder int    `json:"sort_order"`
}

// List 包裹目录列表。
func (s *PackService) List(onlyActive bool) ([]models.OrderPackList, error) {
	return s.packs.List(onlyActive)
}

// Get 包裹详情。
func (s *PackService) Get(id uint) (*models.OrderPackList, error) {
	pack, err := s.packs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pack == nil {
		return nil, fmt.Errorf("%w: %d", ErrPackNotFound, id)
	}
	return pack, nil
}

// Create 新增包裹规格，编码唯一。
func (s *PackService) Create(input PackInput) (*models.OrderPackList, error) {
	problems := make([]string, 0)
	code := strings.TrimSpace(input.Code)
	if code == "" {
		problems = append(problems, "code")
	}
	if strings.TrimSpace(input.Label) == "" {
		problems = append(problems, "label")
	}
	weight, err := decimal.NewFromString(strings.TrimSpace(input.WeightKG))
	if err != nil || !weight.IsPositive() {
		problems = append(problems, "weight_kg")
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}

	existing, err := s.packs.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewValidationError("code")
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	pack := &models.OrderPackList{
		Code:      code,
		Label:     strings.TrimSpace(input.Label),
		Weight:    models.NewWeightFromDecimal(weight),
		LengthCM:  input.LengthCM,
		WidthCM:   input.WidthCM,
		HeightCM:  input.HeightCM,
		Active:    active,
		SortOrder: input.SortOrder,
	}
	if err := s.packs.Create(pack); err != nil {
		return nil, err
	}
	logger.Infow("pack_created", "pack_id", pack.ID, "code", pack.Code)
	return pack, nil
}

// Update 更新包裹规格。
func (s *PackService) Update(id uint, input PackInput) (*models.OrderPackList, error) {
	pack, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"length_cm":  input.LengthCM,
		"width_cm":   input.WidthCM,
		"height_cm":  input.HeightCM,
		"sort_order": input.SortOrder,
	}
	if code := strings.TrimSpace(input.Code); code != "" && code != pack.Code {
		other, err := s.packs.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, NewValidationError("code")
		}
		updates["code"] = code
	}
	if label := strings.TrimSpace(input.Label); label != "" {
		updates["label"] = label
	}
	if raw := strings.TrimSpace(input.WeightKG); raw != "" {
		weight, err := decimal.NewFromString(raw)
		if err != nil || !weight.IsPositive() {
			return nil, NewValidationError("weight_kg")
		}
		updates["weight"] = models.NewWeightFromDecimal(weight)
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}

	if err := s.packs.Update(id, updates); err != nil {
		return nil, err
	}
	return s.packs.GetByID(id)
}

// Delete 删除包裹规格（软删除）。已下单订单保留各自的快照，不受影响。
func (s *PackService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.packs.Delete(id)
}
