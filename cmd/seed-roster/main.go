package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/database"
	"github.com/readtrack/readtrack-backend/internal/logger"
	"github.com/readtrack/readtrack-backend/internal/model"
	"github.com/readtrack/readtrack-backend/internal/repository"
	"github.com/readtrack/readtrack-backend/internal/service"
)

// group is one seeded intervention group: a teacher, a time block and
// six students working at the same grade level.
type group struct {
	teacher  string
	name     string
	grade    string
	students []string
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.Postgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	unenrollRepo := repository.NewUnenrollmentRepository(pool)
	rosterService := service.NewRosterService(studentRepo, unenrollRepo, log)

	groups := []group{
		{
			teacher: "Keller", name: "Keller 8AM", grade: "1",
			students: []string{
				"Mia Torres", "Eli Johnson", "Ava Chen", "Noah Brooks", "Zoe Ramirez", "Liam Parker",
			},
		},
		{
			teacher: "Keller", name: "Keller 10AM", grade: "2",
			students: []string{
				"Sofia Nguyen", "Jack Morales", "Ella Washington", "Owen Kim", "Ruby Patel", "Mason Lee",
			},
		},
		{
			teacher: "Dawson", name: "Dawson 9AM", grade: "K",
			students: []string{
				"Harper Diaz", "Leo Thompson", "Ivy Martin", "Caleb Rivera", "Nora Bell", "Finn Castillo",
			},
		},
		{
			teacher: "Dawson", name: "Dawson 1PM", grade: "3",
			students: []string{
				"Stella Park", "Hugo Alvarez", "Lucy Chambers", "Theo Wright", "Alice Munoz", "Ezra Coleman",
			},
		},
		{
			teacher: "Whitfield", name: "Whitfield 8AM", grade: "1",
			students: []string{
				"Isla Reed", "Miles Foster", "Cora Jenkins", "Felix Ortiz", "June Barnes", "Oscar Vega",
			},
		},
		{
			teacher: "Whitfield", name: "Whitfield 11AM", grade: "2",
			students: []string{
				"Hazel Cruz", "Jude Palmer", "Wren Douglas", "Silas Hoang", "Daisy Fleming", "Rhys Calloway",
			},
		},
		{
			teacher: "Okafor", name: "Okafor 9AM", grade: "K",
			students: []string{
				"Remy Salazar", "Tess Whitman", "Arlo Benson", "Pia Mendoza", "Gus Tran", "Lena Hartley",
			},
		},
		{
			teacher: "Okafor", name: "Okafor 2PM", grade: "3",
			students: []string{
				"Nico Russo", "Faye Osborne", "Dez Carmichael", "Opal Sutton", "Bram Delgado", "Suki Tanaka",
			},
		},
	}

	fmt.Println("=== Seeding Intervention Roster ===")

	successCount, total := 0, 0
	for _, g := range groups {
		for _, name := range g.students {
			total++
			req := &model.EnrollStudentRequest{
				Name:        name,
				Grade:       g.grade,
				TeacherName: g.teacher,
				GroupName:   g.name,
			}
			if _, err := rosterService.Enroll(ctx, req); err != nil {
				if errors.Is(err, service.ErrStudentActive) {
					fmt.Printf("Skipping %s: already enrolled\n", name)
					continue
				}
				fmt.Printf("Error enrolling %s: %v\n", name, err)
				continue
			}
			successCount++
		}
		fmt.Printf("Seeded group %s (%s, grade %s)\n", g.name, g.teacher, g.grade)
	}

	fmt.Printf("\nSeed completed! Successfully enrolled %d/%d students.\n", successCount, total)
}
