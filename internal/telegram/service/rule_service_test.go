package service

import (
	"context"
	"errors"
	"testing"

	"relay_bot/internal/telegram/models"
)

type stubRuleRepo struct {
	rules     map[string]*models.ForwardingRule
	createErr error
}

func newStubRuleRepo() *stubRuleRepo {
	return &stubRuleRepo{rules: make(map[string]*models.ForwardingRule)}
}

func (s *stubRuleRepo) Create(ctx context.Context, rule *models.ForwardingRule) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.rules[rule.RuleName]; exists {
		return errors.New("duplicate rule name")
	}
	s.rules[rule.RuleName] = rule
	return nil
}

func (s *stubRuleRepo) GetByName(ctx context.Context, ruleName string) (*models.ForwardingRule, error) {
	rule, ok := s.rules[ruleName]
	if !ok {
		return nil, errors.New("rule not found")
	}
	return rule, nil
}

func (s *stubRuleRepo) GetBySourceChannel(ctx context.Context, sourceChannelID int64) ([]*models.ForwardingRule, error) {
	return nil, nil
}

func (s *stubRuleRepo) ListAll(ctx context.Context) ([]*models.ForwardingRule, error) {
	result := make([]*models.ForwardingRule, 0, len(s.rules))
	for _, rule := range s.rules {
		result = append(result, rule)
	}
	return result, nil
}

func (s *stubRuleRepo) SetEnabled(ctx context.Context, ruleName string, enabled bool) error {
	rule, ok := s.rules[ruleName]
	if !ok {
		return errors.New("rule not found")
	}
	rule.IsEnabled = enabled
	return nil
}

func (s *stubRuleRepo) Delete(ctx context.Context, ruleName string) error {
	if _, ok := s.rules[ruleName]; !ok {
		return errors.New("rule not found")
	}
	delete(s.rules, ruleName)
	return nil
}

func (s *stubRuleRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

func validDraft() *models.ForwardingRule {
	return &models.ForwardingRule{
		RuleName:         "news-mirror",
		SourceChannelID:  -1000000000123,
		TargetChannelIDs: []int64{-1000000000555},
		IsEnabled:        true,
	}
}

func TestCreateRuleSuccess(t *testing.T) {
	repo := newStubRuleRepo()
	var invalidated []int64
	svc := NewRuleService(repo, func(sourceID int64) {
		invalidated = append(invalidated, sourceID)
	})

	if err := svc.CreateRule(context.Background(), validDraft()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := repo.rules["news-mirror"]; !ok {
		t.Fatal("expected rule to be stored")
	}
	if len(invalidated) != 1 || invalidated[0] != -1000000000123 {
		t.Fatalf("expected cache invalidation for source, got %v", invalidated)
	}
	if repo.rules["news-mirror"].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestCreateRuleValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ForwardingRule)
	}{
		{name: "empty name", mutate: func(r *models.ForwardingRule) { r.RuleName = "  " }},
		{name: "pipe in name", mutate: func(r *models.ForwardingRule) { r.RuleName = "a|b" }},
		{name: "space in name", mutate: func(r *models.ForwardingRule) { r.RuleName = "a b" }},
		{name: "zero source", mutate: func(r *models.ForwardingRule) { r.SourceChannelID = 0 }},
		{name: "no targets", mutate: func(r *models.ForwardingRule) { r.TargetChannelIDs = nil }},
		{name: "zero target", mutate: func(r *models.ForwardingRule) { r.TargetChannelIDs = []int64{0} }},
		{name: "target equals source", mutate: func(r *models.ForwardingRule) {
			r.TargetChannelIDs = []int64{r.SourceChannelID}
		}},
		{name: "duplicate target", mutate: func(r *models.ForwardingRule) {
			r.TargetChannelIDs = []int64{-100555, -100555}
		}},
		{name: "invalid regex", mutate: func(r *models.ForwardingRule) {
			r.Filters.ContainsText = "[unclosed"
			r.Filters.IsRegex = true
		}},
		{name: "negative min length", mutate: func(r *models.ForwardingRule) {
			r.Filters.MinMessageLength = -1
		}},
		{name: "min greater than max", mutate: func(r *models.ForwardingRule) {
			r.Filters.MinMessageLength = 10
			r.Filters.MaxMessageLength = 5
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRuleRepo()
			svc := NewRuleService(repo, nil)

			draft := validDraft()
			tt.mutate(draft)

			if err := svc.CreateRule(context.Background(), draft); err == nil {
				t.Fatal("expected validation error")
			}
			if len(repo.rules) != 0 {
				t.Fatal("invalid rule must not be stored")
			}
		})
	}
}

func TestSetRuleEnabled(t *testing.T) {
	repo := newStubRuleRepo()
	repo.rules["news-mirror"] = validDraft()

	var invalidated []int64
	svc := NewRuleService(repo, func(sourceID int64) {
		invalidated = append(invalidated, sourceID)
	})

	if err := svc.SetRuleEnabled(context.Background(), "news-mirror", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.rules["news-mirror"].IsEnabled {
		t.Fatal("expected rule to be disabled")
	}
	if len(invalidated) != 1 {
		t.Fatalf("expected 1 invalidation, got %d", len(invalidated))
	}

	// 重复停用应报错
	if err := svc.SetRuleEnabled(context.Background(), "news-mirror", false); err == nil {
		t.Fatal("expected error when state unchanged")
	}
}

func TestSetRuleEnabledUnknownRule(t *testing.T) {
	svc := NewRuleService(newStubRuleRepo(), nil)
	if err := svc.SetRuleEnabled(context.Background(), "missing", true); err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

func TestDeleteRule(t *testing.T) {
	repo := newStubRuleRepo()
	repo.rules["news-mirror"] = validDraft()

	var invalidated []int64
	svc := NewRuleService(repo, func(sourceID int64) {
		invalidated = append(invalidated, sourceID)
	})

	if err := svc.DeleteRule(context.Background(), "news-mirror"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.rules) != 0 {
		t.Fatal("expected rule to be removed")
	}
	if len(invalidated) != 1 || invalidated[0] != -1000000000123 {
		t.Fatalf("expected cache invalidation for source, got %v", invalidated)
	}
}

func TestDeleteRuleUnknown(t *testing.T) {
	svc := NewRuleService(newStubRuleRepo(), nil)
	if err := svc.DeleteRule(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown rule")
	}
}
