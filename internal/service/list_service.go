package service

import (
	"context"
	"strings"

	"brc/internal/cache"
	"brc/internal/models"
	"brc/internal/repository"
)

type ListService struct {
	listRepo repository.ListRepository
}

// UpdateListInput is a partial list update. Nil pointers mean "leave
// unchanged". ResetSecretKey is exclusive with every other field.
type UpdateListInput struct {
	ID             string
	Name           *string
	Description    *string
	Domain         *string
	Icon           *string
	ClaimBotAPI    *string
	UnclaimBotAPI  *string
	ApproveBotAPI  *string
	DenyBotAPI     *string
	ResetSecretKey bool
}

// UpdateListResult carries the updated projection; NewSecret is set only
// on a secret rotation and is the single time the value is readable.
type UpdateListResult struct {
	List      models.PublicList
	NewSecret string
}

func NewListService(listRepo repository.ListRepository) *ListService {
	return &ListService{listRepo: listRepo}
}

// ListLists returns the public catalog.
func (s *ListService) ListLists(ctx context.Context) ([]models.PublicList, error) {
	var out []models.PublicList
	err := cache.Aside(ctx, cache.ListIndexKey, &out, cache.ListTTL, func() error {
		lists, err := s.listRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		out = make([]models.PublicList, 0, len(lists))
		for i := range lists {
			out = append(out, lists[i].Public())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ListService) GetList(ctx context.Context, id string) (*models.PublicList, error) {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := list.Public()
	return &public, nil
}

// UpdateList applies a partial update or rotates the secret, never both
// in one call.
func (s *ListService) UpdateList(ctx context.Context, in UpdateListInput) (*UpdateListResult, error) {
	if in.ResetSecretKey {
		if listUpdateFields(in) != nil {
			return nil, models.NewValidationError("reset_secret_key cannot be combined with other updates")
		}
		secret, err := s.listRepo.RotateSecret(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		list, err := s.listRepo.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		cache.InvalidateList(ctx, in.ID)
		return &UpdateListResult{List: list.Public(), NewSecret: secret}, nil
	}

	fields := listUpdateFields(in)
	if fields == nil {
		return nil, models.NewValidationError("no fields to update")
	}
	for _, col := range []string{"claim_bot_api", "unclaim_bot_api", "approve_bot_api", "deny_bot_api"} {
		raw, ok := fields[col]
		if !ok {
			continue
		}
		url, ok := coerceHTTPS(raw.(string))
		if !ok || url == "" {
			return nil, models.NewValidationError("callback URLs must be https")
		}
		fields[col] = url
	}
	if raw, ok := fields["domain"]; ok {
		fields["domain"] = strings.TrimSuffix(raw.(string), "/")
	}

	if err := s.listRepo.UpdateFields(ctx, in.ID, fields); err != nil {
		return nil, err
	}
	list, err := s.listRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	cache.InvalidateList(ctx, in.ID)
	return &UpdateListResult{List: list.Public()}, nil
}

// listUpdateFields collects the set fields into a column map, nil when
// nothing was set.
func listUpdateFields(in UpdateListInput) map[string]any {
	fields := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	set("name", in.Name)
	set("description", in.Description)
	set("domain", in.Domain)
	set("icon", in.Icon)
	set("claim_bot_api", in.ClaimBotAPI)
	set("unclaim_bot_api", in.UnclaimBotAPI)
	set("approve_bot_api", in.ApproveBotAPI)
	set("deny_bot_api", in.DenyBotAPI)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
