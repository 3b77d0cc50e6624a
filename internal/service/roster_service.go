package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/seojunlee/teamlive/internal/repository"
	"github.com/seojunlee/teamlive/internal/ws"
	"github.com/seojunlee/teamlive/pkg/notification"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrAccountNotFound = errors.New("account not found")
)

// RosterService handles roster reads, follow management and account status
// transitions
type RosterService struct {
	teamRepo    *repository.TeamRepository
	accountRepo *repository.AccountRepository
	subRepo     *repository.SubscriptionRepository
	hub         *ws.Hub
	notifier    *notification.NotificationService
}

func NewRosterService(
	teamRepo *repository.TeamRepository,
	accountRepo *repository.AccountRepository,
	subRepo *repository.SubscriptionRepository,
	hub *ws.Hub,
	notifier *notification.NotificationService,
) *RosterService {
	return &RosterService{
		teamRepo:    teamRepo,
		accountRepo: accountRepo,
		subRepo:     subRepo,
		hub:         hub,
		notifier:    notifier,
	}
}

// GetTeams returns all teams
func (s *RosterService) GetTeams() ([]model.Team, error) {
	return s.teamRepo.ListTeams()
}

// GetRoster returns a team's roster for a viewer. userID is uuid.Nil for
// anonymous viewers.
func (s *RosterService) GetRoster(teamAbbr string, userID uuid.UUID) ([]model.RosterEntry, error) {
	if _, err := s.teamRepo.FindTeamByAbbr(teamAbbr); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return s.teamRepo.GetRoster(teamAbbr, userID)
}

// Subscribe follows a player for push notifications
func (s *RosterService) Subscribe(userID, playerID uuid.UUID) error {
	if _, err := s.teamRepo.FindPlayerByID(playerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	if err := s.subRepo.Subscribe(userID, playerID); err != nil {
		return err
	}
	s.hub.SendToUser(userID, &model.WSEvent{
		Type:    model.WSEventSubscribed,
		Payload: model.SubscriptionEvent{UserID: userID, PlayerID: playerID},
	})
	return nil
}

// ListSubscriptions returns the ids of the players a user follows
func (s *RosterService) ListSubscriptions(userID uuid.UUID) ([]uuid.UUID, error) {
	return s.subRepo.ListByUser(userID)
}

// GetPlayerAccounts returns all game accounts of a player, primary first
func (s *RosterService) GetPlayerAccounts(playerID uuid.UUID) ([]model.GameAccount, error) {
	if _, err := s.teamRepo.FindPlayerByID(playerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return s.accountRepo.ListByPlayer(playerID)
}

// Unsubscribe stops following a player
func (s *RosterService) Unsubscribe(userID, playerID uuid.UUID) error {
	if err := s.subRepo.Unsubscribe(userID, playerID); err != nil {
		return err
	}
	s.hub.SendToUser(userID, &model.WSEvent{
		Type:    model.WSEventUnsubscribed,
		Payload: model.SubscriptionEvent{UserID: userID, PlayerID: playerID},
	})
	return nil
}

// UpdateAccountStatus persists an account's new online state. When the value
// actually changed, the change feed is notified; an offline→online transition
// additionally fans out push notifications to the player's subscribers.
func (s *RosterService) UpdateAccountStatus(ctx context.Context, accountID uuid.UUID, online bool) error {
	account, err := s.accountRepo.FindByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	wasOnline, err := s.accountRepo.SetOnlineStatus(accountID, online)
	if err != nil {
		return err
	}
	if wasOnline == online {
		// Trackers re-report state; only real transitions reach the feed
		return nil
	}

	s.hub.BroadcastStatusChange(model.AccountStatusEvent{
		RecordID: account.ID,
		PlayerID: account.PlayerID,
		IsOnline: online,
		At:       time.Now(),
	})

	if online {
		go s.notifySubscribers(account)
	}
	return nil
}

// UpdateAccountStatusByPUUID resolves an account by its game API identity
// and applies the status report. Trackers polling the game API only know
// accounts by PUUID.
func (s *RosterService) UpdateAccountStatusByPUUID(ctx context.Context, puuid string, online bool) error {
	account, err := s.accountRepo.FindByPUUID(puuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return s.UpdateAccountStatus(ctx, account.ID, online)
}

// notifySubscribers pushes "player went live" notifications. Runs detached
// from the request; push delivery must not delay the status write.
func (s *RosterService) notifySubscribers(account *model.GameAccount) {
	player, err := s.teamRepo.FindPlayerByID(account.PlayerID)
	if err != nil {
		log.Printf("⚠️ Failed to load player %s for notification: %v", account.PlayerID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.notifier.SendLiveNotification(ctx, player.ID, player.Name, account.SummonerName); err != nil {
		log.Printf("⚠️ Failed to send live notification for %s: %v", player.Name, err)
	}
}
