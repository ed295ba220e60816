package seed

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/okian/clubhouse/internal/domain/model"
)

const (
	randomFloatDivisor = 1000000
	maxParticipants    = 250
	multiDayOneIn      = 4
	maxExtraDays       = 3
)

var (
	locations = []string{"Main Hall", "Innovation Lab", "Library Room 2", "Online", "Student Union"}
	slots     = []string{"10:00 - 12:00", "14:00 - 16:00", "18:00 - 21:00", ""}
	roles     = []string{"President", "Vice President", "Treasurer", "Secretary", "Events Lead", "Marketing Lead"}
	authors   = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Katherine Johnson"}
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick[T any](items []T) T { return items[randomInt(len(items))] }

// GenerateEvents creates n events starting within now +/- span, cycling
// through the categories. Some span several days.
func GenerateEvents(n int, now time.Time, span time.Duration) []model.Event {
	cats := model.Categories()
	events := make([]model.Event, n)
	for i := range events {
		offset := time.Duration((getRandomFloat()*2 - 1) * float64(span))
		start := now.Add(offset).Truncate(time.Hour)
		e := model.Event{
			ContentItem: model.ContentItem{
				Category:    cats[i%len(cats)],
				Title:       fmt.Sprintf("%s session #%d", cats[i%len(cats)], i+1),
				Description: "Generated event for local development.",
				ImageID:     uuid.NewString(),
			},
			Start:        start,
			Time:         pick(slots),
			Location:     pick(locations),
			Participants: randomInt(maxParticipants),
		}
		if randomInt(multiDayOneIn) == 0 {
			end := start.AddDate(0, 0, 1+randomInt(maxExtraDays))
			e.End = &end
		}
		if i%2 == 0 {
			e.RegistrationURL = "https://forms.example.edu/register/" + uuid.NewString()
		}
		events[i] = e
	}
	return events
}

// GenerateBlogs creates n posts; the first one is featured.
func GenerateBlogs(n int) []model.Blog {
	cats := model.Categories()
	posts := make([]model.Blog, n)
	for i := range posts {
		posts[i] = model.Blog{
			ContentItem: model.ContentItem{
				Category:    cats[(i+1)%len(cats)],
				Title:       fmt.Sprintf("Notes from the club, part %d", i+1),
				Description: "Generated post for local development.",
				ImageID:     uuid.NewString(),
			},
			Author:   pick(authors),
			ReadTime: fmt.Sprintf("%d min read", 2+randomInt(8)),
			Featured: i == 0,
		}
	}
	return posts
}

// GenerateTeam creates n members in display order.
func GenerateTeam(n int) []model.TeamMember {
	members := make([]model.TeamMember, n)
	for i := range members {
		members[i] = model.TeamMember{
			Name:    fmt.Sprintf("Member %d", i+1),
			Role:    roles[i%len(roles)],
			Bio:     "Generated member for local development.",
			ImageID: uuid.NewString(),
			Order:   i + 1,
		}
	}
	return members
}
