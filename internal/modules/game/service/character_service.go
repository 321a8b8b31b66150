package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/google/uuid"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/modules/game/economy"
	"rpg-backend/internal/pkg/config"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/xerrors"
	"rpg-backend/internal/repository/interfaces"
)

// 新角色初始值
const (
	startingGold  = 100
	startingGems  = 10
	startingPower = economy.MinPower
)

// CharacterService 角色创建与查询
type CharacterService struct {
	cfg           config.GameConfig
	tx            interfaces.Transactor
	characterRepo interfaces.CharacterRepository
	logger        log.Logger
	newID         func() string
}

// NewCharacterService 创建角色服务
func NewCharacterService(cfg config.GameConfig, tx interfaces.Transactor, repo interfaces.CharacterRepository, logger log.Logger) *CharacterService {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &CharacterService{
		cfg:           cfg,
		tx:            tx,
		characterRepo: repo,
		logger:        logger.With("component", "character"),
		newID:         uuid.NewString,
	}
}

// CharacterSummary 角色列表项
type CharacterSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CharacterClass int       `json:"character_class"`
	Level          int       `json:"level"`
	CreatedAt      time.Time `json:"created_at"`
}

// CharacterDetail 角色完整数据
type CharacterDetail struct {
	CharacterSummary
	XP             int64                    `json:"xp"`
	Power          int64                    `json:"power"`
	Gold           int64                    `json:"gold"`
	Gems           int64                    `json:"gems"`
	FreeStatPoints int                      `json:"free_stat_points"`
	Stats          gamemodel.CharacterStats `json:"stats"`
	Inventory      gamemodel.Inventory      `json:"inventory"`
	Equipped       gamemodel.Equipped       `json:"equipped"`
	Potions        gamemodel.Potions        `json:"potions"`
	Skills         gamemodel.Skills         `json:"skills"`
	Progression    gamemodel.Progression    `json:"progression"`
	Shop           gamemodel.Shop           `json:"shop"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func summaryOf(c *game_runtime.Character) CharacterSummary {
	return CharacterSummary{
		ID:             c.ID,
		Name:           c.Name,
		CharacterClass: c.CharacterClass,
		Level:          c.Level,
		CreatedAt:      c.CreatedAt,
	}
}

// CreateCharacter 每个用户的角色数量有上限，同一用户下角色名唯一
func (s *CharacterService) CreateCharacter(ctx context.Context, userID, name string, class gamemodel.CharacterClass) (*CharacterSummary, error) {
	if userID == "" {
		return nil, xerrors.New(xerrors.CodeAuthenticationFailed, "未找到用户信息")
	}

	character := &game_runtime.Character{
		ID:             s.newID(),
		UserID:         userID,
		Name:           name,
		CharacterClass: int(class),
		Level:          1,
		Gold:           startingGold,
		Gems:           startingGems,
		Power:          startingPower,
	}
	if err := character.SetProfile(game_runtime.DefaultProfile(s.cfg.InventorySlots)); err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeInternalError, "初始化角色数据失败")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec boil.ContextExecutor) error {
		count, err := s.characterRepo.CountByUser(ctx, exec, userID)
		if err != nil {
			return xerrors.NewDatabaseError("count", "characters", err)
		}
		if count >= s.cfg.MaxCharactersPerUser {
			return xerrors.New(xerrors.CodeCharacterLimitReached,
				fmt.Sprintf("Maximum of %d characters allowed", s.cfg.MaxCharactersPerUser)).
				WithUser(userID)
		}

		exists, err := s.characterRepo.ExistsByName(ctx, exec, userID, name)
		if err != nil {
			return xerrors.NewDatabaseError("select", "characters", err)
		}
		if exists {
			return xerrors.FromCode(xerrors.CodeCharacterNameExists).WithUser(userID)
		}

		if err := s.characterRepo.Create(ctx, exec, character); err != nil {
			// 并发创建同名角色时由唯一索引兜底
			if errors.Is(err, interfaces.ErrDuplicate) {
				return xerrors.FromCode(xerrors.CodeCharacterNameExists).WithUser(userID)
			}
			return xerrors.NewDatabaseError("insert", "characters", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.LogGameEvent(ctx, s.logger, "character_created", character.ID,
		log.String("user_id", userID),
		log.Int("class", int(class)))

	summary := summaryOf(character)
	return &summary, nil
}

// ListCharacters 用户的全部角色
func (s *CharacterService) ListCharacters(ctx context.Context, userID string) ([]CharacterSummary, error) {
	characters, err := s.characterRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "characters", err)
	}
	summaries := make([]CharacterSummary, 0, len(characters))
	for _, c := range characters {
		summaries = append(summaries, summaryOf(c))
	}
	return summaries, nil
}

// GetCharacter 角色完整数据
func (s *CharacterService) GetCharacter(ctx context.Context, userID, characterID string) (*CharacterDetail, error) {
	character, err := s.owned(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}
	profile, err := character.Profile(s.cfg.InventorySlots)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDataIntegrityError, "角色数据损坏")
	}
	return &CharacterDetail{
		CharacterSummary: summaryOf(character),
		XP:               character.Experience,
		Power:            character.Power,
		Gold:             character.Gold,
		Gems:             character.Gems,
		FreeStatPoints:   character.FreeStatPoints,
		Stats:            profile.Stats,
		Inventory:        profile.Inventory,
		Equipped:         profile.Equipped,
		Potions:          profile.Potions,
		Skills:           profile.Skills,
		Progression:      profile.Progression,
		Shop:             profile.Shop,
		UpdatedAt:        character.UpdatedAt,
	}, nil
}

// DeleteCharacter 永久删除角色
func (s *CharacterService) DeleteCharacter(ctx context.Context, userID, characterID string) error {
	if _, err := s.owned(ctx, userID, characterID); err != nil {
		return err
	}
	if err := s.characterRepo.Delete(ctx, nil, characterID); err != nil {
		return characterLookupError(err, characterID)
	}
	log.LogGameEvent(ctx, s.logger, "character_deleted", characterID, log.String("user_id", userID))
	return nil
}

// EnsureOwned 角色不存在或不属于该用户时统一返回角色不存在
func (s *CharacterService) EnsureOwned(ctx context.Context, userID, characterID string) error {
	_, err := s.owned(ctx, userID, characterID)
	return err
}

func (s *CharacterService) owned(ctx context.Context, userID, characterID string) (*game_runtime.Character, error) {
	character, err := s.characterRepo.GetByID(ctx, nil, characterID)
	if err != nil {
		return nil, characterLookupError(err, characterID)
	}
	if character.UserID != userID {
		return nil, xerrors.NewCharacterNotFoundError(characterID)
	}
	return character, nil
}
