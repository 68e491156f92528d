package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/db"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/scheduling"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	hospitals, err := seedHospitals(context.Background(), pool, 5)
	if err != nil {
		log.Fatalf("seed hospitals: %v", err)
	}
	doctors, err := seedDoctors(context.Background(), pool, hospitals, 50)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedSlots(context.Background(), pool, doctors); err != nil {
		log.Fatalf("seed slots: %v", err)
	}

	log.Println("seed complete")
}

func seedHospitals(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d hospitals", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.City() + " General Hospital"
		address := gofakeit.Address().Address

		_, err := tx.Exec(ctx, `
			INSERT INTO hospitals (id, name, address, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, address)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("hospitals seeded")
	return ids, nil
}

type seededDoctor struct {
	id         uuid.UUID
	hospitalID uuid.UUID
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, hospitals []uuid.UUID, count int) ([]seededDoctor, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	doctors := make([]seededDoctor, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		hospitalID := hospitals[gofakeit.Number(0, len(hospitals)-1)]
		name := "Dr. " + gofakeit.Name()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]
		email := gofakeit.Email()

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, hospital_id, name, specialty, email, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, id, hospitalID, name, specialty, email)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, seededDoctor{id: id, hospitalID: hospitalID})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return doctors, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, id, name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}

// seedSlots fills the next two working weeks with hourly slots per doctor.
func seedSlots(ctx context.Context, pool *pgxpool.Pool, doctors []seededDoctor) error {
	log.Printf("seeding slots for %d doctors", len(doctors))

	dates := upcomingWeekdays(10)

	for _, doc := range doctors {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for _, date := range dates {
			for tod := scheduling.OpeningTime; tod < scheduling.ClosingTime; tod += 60 {
				_, err := tx.Exec(ctx, `
					INSERT INTO slots (id, doctor_id, hospital_id, slot_date, time_of_day, occupied, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, false, now(), now())
				`, uuid.New(), doc.id, doc.hospitalID, date, int16(tod))
				if err != nil {
					_ = tx.Rollback(ctx)
					return err
				}
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	log.Println("slots seeded")
	return nil
}

func upcomingWeekdays(count int) []time.Time {
	dates := make([]time.Time, 0, count)
	d := scheduling.Today()
	for len(dates) < count {
		d = d.AddDate(0, 0, 1)
		if !scheduling.IsWeekend(d) {
			dates = append(dates, d)
		}
	}
	return dates
}
