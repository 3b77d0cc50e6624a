package main

import (
	"log"

	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/config"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/seojunlee/teamlive/pkg/auth"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type seedAccount struct {
	summoner string
	tag      string
	puuid    string
	primary  bool
}

type seedPlayer struct {
	name     string
	position string
	accounts []seedAccount
}

type seedTeam struct {
	name    string
	abbr    string
	players []seedPlayer
}

var seedData = []seedTeam{
	{
		name: "T1", abbr: "T1",
		players: []seedPlayer{
			{name: "Faker", position: "MID", accounts: []seedAccount{
				{summoner: "Hide on bush", tag: "KR1", puuid: "puuid-faker-main", primary: true},
				{summoner: "TwT", tag: "KR2", puuid: "puuid-faker-alt"},
			}},
			{name: "Gumayusi", position: "ADC", accounts: []seedAccount{
				{summoner: "Gumayusi", tag: "KR1", puuid: "puuid-guma-main", primary: true},
			}},
			{name: "Keria", position: "SUP", accounts: []seedAccount{
				{summoner: "Keria", tag: "KR1", puuid: "puuid-keria-main", primary: true},
			}},
		},
	},
	{
		name: "Gen.G", abbr: "GEN",
		players: []seedPlayer{
			{name: "Chovy", position: "MID", accounts: []seedAccount{
				{summoner: "Chovy", tag: "KR1", puuid: "puuid-chovy-main", primary: true},
				{summoner: "herald", tag: "KR2", puuid: "puuid-chovy-alt"},
			}},
			{name: "Canyon", position: "JGL", accounts: []seedAccount{
				{summoner: "Canyon", tag: "KR1", puuid: "puuid-canyon-main", primary: true},
			}},
		},
	},
}

func main() {
	// Load config
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	log.Printf("🌱 Seeding %d teams...", len(seedData))

	for _, st := range seedData {
		// Check if exists
		var team model.Team
		if err := db.Where("name_abbr = ?", st.abbr).First(&team).Error; err != nil {
			team = model.Team{Name: st.name, NameAbbr: st.abbr}
			if err := db.Create(&team).Error; err != nil {
				log.Printf("❌ Failed to create team %s: %v", st.abbr, err)
				continue
			}
			log.Printf("✅ Created team: %s", st.abbr)
		}

		for _, sp := range st.players {
			var player model.Player
			if err := db.Where("team_id = ? AND name = ?", team.ID, sp.name).First(&player).Error; err != nil {
				player = model.Player{
					ID:       uuid.New(),
					TeamID:   team.ID,
					Name:     sp.name,
					Position: sp.position,
				}
				if err := db.Create(&player).Error; err != nil {
					log.Printf("❌ Failed to create player %s: %v", sp.name, err)
					continue
				}
				log.Printf("✅ Created player: %s (%s)", sp.name, st.abbr)
			}

			for _, sa := range sp.accounts {
				var account model.GameAccount
				if err := db.Where("puuid = ?", sa.puuid).First(&account).Error; err == nil {
					continue
				}
				account = model.GameAccount{
					ID:           uuid.New(),
					PlayerID:     player.ID,
					SummonerName: sa.summoner,
					TagLine:      sa.tag,
					PUUID:        sa.puuid,
					IsPrimary:    sa.primary,
				}
				if err := db.Create(&account).Error; err != nil {
					log.Printf("❌ Failed to create account %s#%s: %v", sa.summoner, sa.tag, err)
				} else {
					log.Printf("✅ Created account: %s#%s for %s", sa.summoner, sa.tag, sp.name)
				}
			}
		}
	}

	log.Println("🌱 Seeding complete")

	// Mint a viewer token so the seeded data can be exercised right away
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	demoUserID := uuid.New()
	token, err := jwtManager.GenerateToken(demoUserID, "demo@teamlive.gg")
	if err != nil {
		log.Printf("⚠️ Failed to generate demo token: %v", err)
		return
	}
	log.Printf("🔑 Demo viewer: user_id=%s", demoUserID)
	log.Printf("🔑 Authorization: Bearer %s", token)
}
