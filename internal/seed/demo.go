package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"crewz/internal/media"
	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/repository"
	"crewz/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated demo account.
const DemoPassword = "crewz2024"

// Options configures demo data generation.
type Options struct {
	NumUsers     int
	PostsPerUser int
	ShouldClean  bool
}

// Summary reports what a demo run created.
type Summary struct {
	Users    int
	Vehicles int
	Posts    int
	Likes    int
	Comments int
	Follows  int
	Messages int
	Events   int
}

// Seeder generates demo content through the service layer so every derived counter is maintained
// exactly as it is for real traffic.
type Seeder struct {
	db       *gorm.DB
	auth     *service.AuthService
	users    *service.UserService
	vehicles *service.VehicleService
	posts    *service.PostService
	messages *service.MessageService
	events   *service.EventService
	faker    *gofakeit.Faker
}

// NewSeeder wires services over db. Seed fixes the fake-data generator for reproducible runs.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	checker := media.NewChecker(media.Limits{})
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)

	return &Seeder{
		db: db,
		// Demo accounts use the minimum bcrypt cost so large meshes seed quickly.
		auth:     service.NewAuthService(userRepo, noTokens{}).WithHashCost(bcrypt.MinCost),
		users:    service.NewUserService(userRepo, repository.NewFollowRepository(db), checker),
		vehicles: service.NewVehicleService(vehicleRepo, checker),
		posts: service.NewPostService(service.PostServiceDeps{
			Posts:    repository.NewPostRepository(db),
			Likes:    repository.NewLikeRepository(db),
			Comments: repository.NewCommentRepository(db),
			Users:    userRepo,
			Vehicles: vehicleRepo,
			Media:    checker,
		}),
		messages: service.NewMessageService(repository.NewMessageRepository(db), userRepo, checker),
		events:   service.NewEventService(repository.NewEventRepository(db), checker),
		faker:    gofakeit.New(seed),
	}
}

// noTokens satisfies service.TokenIssuer for seeding, where no session is handed out.
type noTokens struct{}

func (noTokens) Issue(string) (string, time.Time, error) { return "", time.Time{}, nil }

// ClearAll removes every row of every persistent table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []any{
		&models.Message{}, &models.Conversation{},
		&models.EventInvite{}, &models.EventAttendee{}, &models.Event{},
		&models.Comment{}, &models.Like{}, &models.Post{},
		&models.Vehicle{}, &models.Follow{}, &models.User{},
	}
	for _, t := range tables {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	return nil
}

// Demo builds a small social mesh: users with garages, posts tagged with their vehicles, likes,
// comments, follows, a few conversations and events.
func (s *Seeder) Demo(ctx context.Context, opts Options) (*Summary, error) {
	if opts.NumUsers < 2 {
		return nil, fmt.Errorf("at least two users are required, got %d", opts.NumUsers)
	}
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := s.createUser(ctx, i)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	var postIDs []string
	for _, u := range users {
		v, err := s.createVehicle(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		sum.Vehicles++

		for j := 0; j < opts.PostsPerUser; j++ {
			in := service.CreatePostInput{
				UserID:  u.ID,
				Caption: s.faker.Sentence(s.faker.Number(4, 12)),
				Media:   []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", s.faker.UUID())},
			}
			if s.faker.Bool() {
				in.VehicleID = &v.ID
			}
			p, err := s.posts.CreatePost(ctx, in)
			if err != nil {
				return nil, err
			}
			postIDs = append(postIDs, p.ID)
			sum.Posts++
		}
	}

	for i, u := range users {
		next := users[(i+1)%len(users)]
		if _, err := s.users.ToggleFollow(ctx, u.ID, next.ID); err != nil {
			return nil, err
		}
		sum.Follows++

		for _, postID := range postIDs {
			if s.faker.Number(1, 100) > 30 {
				continue
			}
			if _, err := s.posts.ToggleLike(ctx, postID, u.ID); err != nil {
				return nil, err
			}
			sum.Likes++
			if s.faker.Bool() {
				if _, err := s.posts.AddComment(ctx, service.CreateCommentInput{
					PostID: postID, UserID: u.ID, Content: s.faker.Sentence(6),
				}); err != nil {
					return nil, err
				}
				sum.Comments++
			}
		}

		if _, err := s.messages.SendMessage(ctx, service.SendMessageInput{
			SenderID: u.ID, ReceiverID: next.ID, Content: s.faker.Question(),
		}); err != nil {
			return nil, err
		}
		sum.Messages++
	}

	for i := 0; i < (len(users)+2)/3; i++ {
		org := users[i]
		if _, err := s.events.CreateEvent(ctx, service.CreateEventInput{
			OrganizerID: org.ID,
			Title:       fmt.Sprintf("%s meet in %s", s.faker.CarMaker(), s.faker.City()),
			Description: s.faker.Paragraph(1, 3, 8, " "),
			Date:        time.Now().UTC().Add(time.Duration(s.faker.Number(24, 24*60)) * time.Hour),
			Location:    s.faker.City(),
			IsPrivate:   i%3 == 2,
		}); err != nil {
			return nil, err
		}
		sum.Events++
	}

	middleware.Logger.InfoContext(ctx, "demo data seeded",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("messages", sum.Messages),
	)
	return sum, nil
}

func (s *Seeder) createUser(ctx context.Context, i int) (*models.User, error) {
	first, last := s.faker.FirstName(), s.faker.LastName()
	base := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(first+last))
	if len(base) > 24 {
		base = base[:24]
	}
	username := fmt.Sprintf("%s%d", base, i)
	for len(username) < 3 {
		username = "x" + username
	}

	res, err := s.auth.Register(ctx, service.RegisterInput{
		Username: username,
		Email:    username + "@crewz.test",
		Password: DemoPassword,
		FullName: first + " " + last,
	})
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return res.User, nil
}

func (s *Seeder) createVehicle(ctx context.Context, userID string) (*models.Vehicle, error) {
	kind := models.VehicleTypeCar
	if s.faker.Number(1, 4) == 1 {
		kind = models.VehicleTypeMotorcycle
	}
	return s.vehicles.Create(ctx, service.CreateVehicleInput{
		UserID:        userID,
		Make:          s.faker.CarMaker(),
		Model:         s.faker.CarModel(),
		Year:          s.faker.Number(1965, time.Now().Year()),
		Type:          kind,
		Color:         s.faker.SafeColor(),
		Description:   s.faker.Sentence(10),
		Modifications: s.faker.Sentence(6),
	})
}
