package service

import (
	"fmt"
	"strings"

	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"
)

// featureRequestStatuses 功能需求状态枚举
var featureRequestStatuses = map[string]bool{
	"open":     true,
	"planned":  true,
	"done":     true,
	"rejected": true,
}

// FeatureRequestService 功能需求管理。
type FeatureRequestService struct {
	requests repository.FeatureRequestRepository
}

// NewFeatureRequestService 创建功能需求服务
func NewFeatureRequestService(requests repository.FeatureRequestRepository) *FeatureRequestService {
	return &FeatureRequestService{requests: requests}
}

// FeatureRequestInput 创建/更新输入。
type FeatureRequestInput struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status string `json:"status"`
}

// List 功能需求列表。
func (s *FeatureRequestService) List(filter repository.FeatureRequestListFilter) ([]models.FeatureRequest, int64, error) {
	return s.requests.List(filter)
}

// Get 功能需求详情。
func (s *FeatureRequestService) Get(id uint) (*models.FeatureRequest, error) {
	request, err := s.requests.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("%w: %d", ErrFeatureRequestNotFound, id)
	}
	return request, nil
}

// Create 创建功能需求。
func (s *FeatureRequestService) Create(input FeatureRequestInput) (*models.FeatureRequest, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, NewValidationError("title")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "open"
	}
	if !featureRequestStatuses[status] {
		return nil, NewValidationError("status")
	}

	request := &models.FeatureRequest{
		Title:  strings.TrimSpace(input.Title),
		Detail: input.Detail,
		Status: status,
	}
	if err := s.requests.Create(request); err != nil {
		return nil, err
	}
	return request, nil
}

// Update 更新功能需求。
func (s *FeatureRequestService) Update(id uint, input FeatureRequestInput) (*models.FeatureRequest, error) {
	request, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if title := strings.TrimSpace(input.Title); title != "" {
		updates["title"] = title
	}
	if input.Detail != "" {
		updates["detail"] = input.Detail
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		if !featureRequestStatuses[status] {
			return nil, NewValidationError("status")
		}
		updates["status"] = status
	}

	if err := s.requests.Update(request.ID, updates); err != nil {
		return nil, err
	}
	return s.requests.GetByID(id)
}

// Delete 删除功能需求。
func (s *FeatureRequestService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.requests.Delete(id)
}
