package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"skycarry/internal/models"
)

// Postgres implements Storage on a pgx connection pool. It must behave
// identically to the Memory store; multi-statement mutations (delivery create
// and delivered-status propagation) run in a single transaction so the linked
// package can never go stale relative to the delivery.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed store on the given pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const userColumns = `id, email, password_hash, full_name, phone, photo_url, auth_provider,
	id_verified, phone_verified, address_verified, rating, review_count, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Phone,
		&user.PhotoURL, &user.AuthProvider, &user.IDVerified, &user.PhoneVerified,
		&user.AddressVerified, &user.Rating, &user.ReviewCount, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ------------------- Users -------------------

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, full_name, phone, photo_url, auth_provider)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := p.db.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.Phone, user.PhotoURL, user.AuthProvider,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("storage.CreateUser: %w", err)
	}
	return user, nil
}

func (p *Postgres) GetUser(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.GetUser: %w", err)
	}
	return user, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	user, err := scanUser(p.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.GetUserByEmail: %w", err)
	}
	return user, nil
}

func (p *Postgres) UpdateUserProfile(ctx context.Context, id int, data models.UserUpdateData) (*models.User, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if data.FullName != nil {
		setClauses = append(setClauses, fmt.Sprintf("full_name = $%d", argIdx))
		args = append(args, *data.FullName)
		argIdx++
	}
	if data.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, *data.Phone)
		argIdx++
	}
	if data.PhotoURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("photo_url = $%d", argIdx))
		args = append(args, *data.PhotoURL)
		argIdx++
	}

	if len(setClauses) == 0 {
		return p.GetUser(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argIdx)

	user, err := scanUser(p.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.UpdateUserProfile: %w", err)
	}
	return user, nil
}

func (p *Postgres) UpdateUserVerification(ctx context.Context, id int, update models.VerificationUpdate) (*models.User, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if update.IDVerified != nil {
		setClauses = append(setClauses, fmt.Sprintf("id_verified = $%d", argIdx))
		args = append(args, *update.IDVerified)
		argIdx++
	}
	if update.PhoneVerified != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone_verified = $%d", argIdx))
		args = append(args, *update.PhoneVerified)
		argIdx++
	}
	if update.AddressVerified != nil {
		setClauses = append(setClauses, fmt.Sprintf("address_verified = $%d", argIdx))
		args = append(args, *update.AddressVerified)
		argIdx++
	}

	if len(setClauses) == 0 {
		return p.GetUser(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argIdx)

	user, err := scanUser(p.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.UpdateUserVerification: %w", err)
	}
	return user, nil
}

// ------------------- Trips -------------------

const tripColumns = `id, traveler_id, departure_airport, departure_city, destination_city,
	departure_date, arrival_date, available_weight, price_per_kg, notes, is_active, created_at`

func scanTrip(row pgx.Row) (*models.Trip, error) {
	trip := &models.Trip{}
	err := row.Scan(
		&trip.ID, &trip.TravelerID, &trip.DepartureAirport, &trip.DepartureCity,
		&trip.DestinationCity, &trip.DepartureDate, &trip.ArrivalDate,
		&trip.AvailableWeight, &trip.PricePerKg, &trip.Notes, &trip.IsActive, &trip.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

func (p *Postgres) CreateTrip(ctx context.Context, travelerID int, req models.CreateTripRequest) (*models.Trip, error) {
	query := `
		INSERT INTO trips (traveler_id, departure_airport, departure_city, destination_city,
			departure_date, arrival_date, available_weight, price_per_kg, notes, is_active)
		VALUES ($1, upper($2), $3, $4, $5, $6, $7, $8, $9, TRUE)
		RETURNING ` + tripColumns
	trip, err := scanTrip(p.db.QueryRow(ctx, query,
		travelerID, req.DepartureAirport, req.DepartureCity, req.DestinationCity,
		req.DepartureDate, req.ArrivalDate, req.AvailableWeight, req.PricePerKg, req.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("storage.CreateTrip: %w", err)
	}
	return trip, nil
}

func (p *Postgres) GetTrip(ctx context.Context, id int) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	trip, err := scanTrip(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.GetTrip: %w", err)
	}
	return trip, nil
}

func (p *Postgres) ListTrips(ctx context.Context, filter TripFilter) ([]*models.Trip, error) {
	whereClauses := []string{"is_active = TRUE"}
	var args []interface{}
	argIdx := 1

	if filter.DepartureAirport != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("departure_airport ILIKE '%%' || $%d || '%%'", argIdx))
		args = append(args, *filter.DepartureAirport)
		argIdx++
	}
	if filter.DestinationCity != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("destination_city ILIKE '%%' || $%d || '%%'", argIdx))
		args = append(args, *filter.DestinationCity)
		argIdx++
	}
	if filter.MinWeight != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("available_weight >= $%d", argIdx))
		args = append(args, *filter.MinWeight)
		argIdx++
	}
	if filter.DepartureDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("departure_date >= $%d", argIdx))
		args = append(args, *filter.DepartureDate)
		argIdx++
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE ` +
		strings.Join(whereClauses, " AND ") + ` ORDER BY id`

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.ListTrips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListTrips scan: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListTrips rows: %w", err)
	}
	return trips, nil
}

func (p *Postgres) ListTripsByUser(ctx context.Context, travelerID int) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE traveler_id = $1 ORDER BY id`
	rows, err := p.db.Query(ctx, query, travelerID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListTripsByUser: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListTripsByUser scan: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListTripsByUser rows: %w", err)
	}
	return trips, nil
}

func (p *Postgres) UpdateTrip(ctx context.Context, id int, data models.TripUpdateData) (*models.Trip, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if data.DepartureDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("departure_date = $%d", argIdx))
		args = append(args, *data.DepartureDate)
		argIdx++
	}
	if data.ArrivalDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("arrival_date = $%d", argIdx))
		args = append(args, *data.ArrivalDate)
		argIdx++
	}
	if data.AvailableWeight != nil {
		setClauses = append(setClauses, fmt.Sprintf("available_weight = $%d", argIdx))
		args = append(args, *data.AvailableWeight)
		argIdx++
	}
	if data.PricePerKg != nil {
		setClauses = append(setClauses, fmt.Sprintf("price_per_kg = $%d", argIdx))
		args = append(args, *data.PricePerKg)
		argIdx++
	}
	if data.Notes != nil {
		setClauses = append(setClauses, fmt.Sprintf("notes = $%d", argIdx))
		args = append(args, *data.Notes)
		argIdx++
	}
	if data.IsActive != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *data.IsActive)
		argIdx++
	}

	if len(setClauses) == 0 {
		return p.GetTrip(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE trips SET %s WHERE id = $%d RETURNING `+tripColumns,
		strings.Join(setClauses, ", "), argIdx)

	trip, err := scanTrip(p.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.UpdateTrip: %w", err)
	}
	return trip, nil
}

// ------------------- Packages -------------------

const packageColumns = `id, sender_id, sender_city, receiver_city, package_type, weight,
	dimensions, offered_payment, description, status, is_active, created_at`

func scanPackage(row pgx.Row) (*models.Package, error) {
	pkg := &models.Package{}
	err := row.Scan(
		&pkg.ID, &pkg.SenderID, &pkg.SenderCity, &pkg.ReceiverCity, &pkg.PackageType,
		&pkg.Weight, &pkg.Dimensions, &pkg.OfferedPayment, &pkg.Description,
		&pkg.Status, &pkg.IsActive, &pkg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (p *Postgres) CreatePackage(ctx context.Context, senderID int, req models.CreatePackageRequest) (*models.Package, error) {
	query := `
		INSERT INTO packages (sender_id, sender_city, receiver_city, package_type, weight,
			dimensions, offered_payment, description, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', TRUE)
		RETURNING ` + packageColumns
	pkg, err := scanPackage(p.db.QueryRow(ctx, query,
		senderID, req.SenderCity, req.ReceiverCity, req.PackageType, req.Weight,
		req.Dimensions, req.OfferedPayment, req.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("storage.CreatePackage: %w", err)
	}
	return pkg, nil
}

func (p *Postgres) GetPackage(ctx context.Context, id int) (*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`
	pkg, err := scanPackage(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.GetPackage: %w", err)
	}
	return pkg, nil
}

func (p *Postgres) ListPackages(ctx context.Context, filter PackageFilter) ([]*models.Package, error) {
	whereClauses := []string{"is_active = TRUE"}
	var args []interface{}
	argIdx := 1

	if filter.SenderCity != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("sender_city ILIKE '%%' || $%d || '%%'", argIdx))
		args = append(args, *filter.SenderCity)
		argIdx++
	}
	if filter.ReceiverCity != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("receiver_city ILIKE '%%' || $%d || '%%'", argIdx))
		args = append(args, *filter.ReceiverCity)
		argIdx++
	}
	if filter.MaxWeight != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("weight <= $%d", argIdx))
		args = append(args, *filter.MaxWeight)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	query := `SELECT ` + packageColumns + ` FROM packages WHERE ` +
		strings.Join(whereClauses, " AND ") + ` ORDER BY id`

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.ListPackages: %w", err)
	}
	defer rows.Close()

	var pkgs []*models.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListPackages scan: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListPackages rows: %w", err)
	}
	return pkgs, nil
}

func (p *Postgres) ListPackagesByUser(ctx context.Context, senderID int) ([]*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE sender_id = $1 ORDER BY id`
	rows, err := p.db.Query(ctx, query, senderID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListPackagesByUser: %w", err)
	}
	defer rows.Close()

	var pkgs []*models.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListPackagesByUser scan: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListPackagesByUser rows: %w", err)
	}
	return pkgs, nil
}

func (p *Postgres) UpdatePackage(ctx context.Context, id int, data models.PackageUpdateData) (*models.Package, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if data.SenderCity != nil {
		setClauses = append(setClauses, fmt.Sprintf("sender_city = $%d", argIdx))
		args = append(args, *data.SenderCity)
		argIdx++
	}
	if data.ReceiverCity != nil {
		setClauses = append(setClauses, fmt.Sprintf("receiver_city = $%d", argIdx))
		args = append(args, *data.ReceiverCity)
		argIdx++
	}
	if data.PackageType != nil {
		setClauses = append(setClauses, fmt.Sprintf("package_type = $%d", argIdx))
		args = append(args, *data.PackageType)
		argIdx++
	}
	if data.Weight != nil {
		setClauses = append(setClauses, fmt.Sprintf("weight = $%d", argIdx))
		args = append(args, *data.Weight)
		argIdx++
	}
	if data.Dimensions != nil {
		setClauses = append(setClauses, fmt.Sprintf("dimensions = $%d", argIdx))
		args = append(args, *data.Dimensions)
		argIdx++
	}
	if data.OfferedPayment != nil {
		setClauses = append(setClauses, fmt.Sprintf("offered_payment = $%d", argIdx))
		args = append(args, *data.OfferedPayment)
		argIdx++
	}
	if data.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *data.Description)
		argIdx++
	}
	if data.IsActive != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *data.IsActive)
		argIdx++
	}

	if len(setClauses) == 0 {
		return p.GetPackage(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE packages SET %s WHERE id = $%d RETURNING `+packageColumns,
		strings.Join(setClauses, ", "), argIdx)

	pkg, err := scanPackage(p.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.UpdatePackage: %w", err)
	}
	return pkg, nil
}

func (p *Postgres) UpdatePackageStatus(ctx context.Context, id int, status models.PackageStatus) error {
	query := `UPDATE packages SET status = $1 WHERE id = $2`
	cmdTag, err := p.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("storage.UpdatePackageStatus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ------------------- Deliveries -------------------

const deliveryColumns = `id, trip_id, package_id, traveler_id, sender_id, status,
	payment_status, created_at, updated_at`

func scanDelivery(row pgx.Row) (*models.Delivery, error) {
	d := &models.Delivery{}
	err := row.Scan(
		&d.ID, &d.TripID, &d.PackageID, &d.TravelerID, &d.SenderID,
		&d.Status, &d.PaymentStatus, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (p *Postgres) CreateDelivery(ctx context.Context, trip *models.Trip, pkg *models.Package) (*models.Delivery, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.CreateDelivery begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO deliveries (trip_id, package_id, traveler_id, sender_id, status, payment_status)
		VALUES ($1, $2, $3, $4, 'pending', 'pending')
		RETURNING ` + deliveryColumns
	delivery, err := scanDelivery(tx.QueryRow(ctx, query,
		trip.ID, pkg.ID, trip.TravelerID, pkg.SenderID,
	))
	if err != nil {
		return nil, fmt.Errorf("storage.CreateDelivery: %w", err)
	}

	// Matching side effect: the linked package becomes matched,
	// last-write-wins, whatever its prior status was.
	if _, err := tx.Exec(ctx, `UPDATE packages SET status = 'matched' WHERE id = $1`, pkg.ID); err != nil {
		return nil, fmt.Errorf("storage.CreateDelivery match package: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("storage.CreateDelivery commit: %w", err)
	}
	return delivery, nil
}

func (p *Postgres) GetDelivery(ctx context.Context, id int) (*models.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	delivery, err := scanDelivery(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.GetDelivery: %w", err)
	}
	return delivery, nil
}

func (p *Postgres) ListDeliveriesByUser(ctx context.Context, userID int) ([]*models.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
		WHERE traveler_id = $1 OR sender_id = $1 ORDER BY id`
	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListDeliveriesByUser: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		delivery, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListDeliveriesByUser scan: %w", err)
		}
		deliveries = append(deliveries, delivery)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListDeliveriesByUser rows: %w", err)
	}
	return deliveries, nil
}

func (p *Postgres) UpdateDeliveryStatus(ctx context.Context, id int, status models.DeliveryStatus) (*models.Delivery, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.UpdateDeliveryStatus begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE deliveries SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING ` + deliveryColumns
	delivery, err := scanDelivery(tx.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.UpdateDeliveryStatus: %w", err)
	}

	// Only entry into "delivered" propagates to the linked package.
	if status == models.DeliveryDelivered {
		if _, err := tx.Exec(ctx,
			`UPDATE packages SET status = 'delivered' WHERE id = $1`, delivery.PackageID); err != nil {
			return nil, fmt.Errorf("storage.UpdateDeliveryStatus propagate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("storage.UpdateDeliveryStatus commit: %w", err)
	}
	return delivery, nil
}

func (p *Postgres) UpdateDeliveryPaymentStatus(ctx context.Context, id int, status models.PaymentStatus) (*models.Delivery, error) {
	query := `UPDATE deliveries SET payment_status = $1, updated_at = NOW() WHERE id = $2
		RETURNING ` + deliveryColumns
	delivery, err := scanDelivery(p.db.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("storage.UpdateDeliveryPaymentStatus: %w", err)
	}
	return delivery, nil
}

// ------------------- Messages -------------------

const messageColumns = `id, sender_id, receiver_id, content, is_read, created_at`

func scanMessage(row pgx.Row) (*models.Message, error) {
	msg := &models.Message{}
	err := row.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (p *Postgres) CreateMessage(ctx context.Context, senderID int, req models.SendMessageRequest) (*models.Message, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content, is_read)
		VALUES ($1, $2, $3, FALSE)
		RETURNING ` + messageColumns
	msg, err := scanMessage(p.db.QueryRow(ctx, query, senderID, req.ReceiverID, req.Content))
	if err != nil {
		return nil, fmt.Errorf("storage.CreateMessage: %w", err)
	}
	return msg, nil
}

func (p *Postgres) GetMessagesBetweenUsers(ctx context.Context, userA, userB int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, id`
	rows, err := p.db.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("storage.GetMessagesBetweenUsers: %w", err)
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.GetMessagesBetweenUsers scan: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetMessagesBetweenUsers rows: %w", err)
	}
	return msgs, nil
}

func (p *Postgres) GetMessagesByUser(ctx context.Context, userID int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetMessagesByUser: %w", err)
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.GetMessagesByUser scan: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetMessagesByUser rows: %w", err)
	}
	return msgs, nil
}

func (p *Postgres) MarkMessagesRead(ctx context.Context, readerID, counterpartID int) error {
	query := `UPDATE messages SET is_read = TRUE WHERE receiver_id = $1 AND sender_id = $2`
	if _, err := p.db.Exec(ctx, query, readerID, counterpartID); err != nil {
		return fmt.Errorf("storage.MarkMessagesRead: %w", err)
	}
	return nil
}

// ------------------- Reviews -------------------

const reviewColumns = `id, reviewer_id, reviewee_id, delivery_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*models.Review, error) {
	review := &models.Review{}
	err := row.Scan(
		&review.ID, &review.ReviewerID, &review.RevieweeID, &review.DeliveryID,
		&review.Rating, &review.Comment, &review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (p *Postgres) CreateReview(ctx context.Context, reviewerID int, req models.CreateReviewRequest) (*models.Review, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.CreateReview begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reviews (reviewer_id, reviewee_id, delivery_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + reviewColumns
	review, err := scanReview(tx.QueryRow(ctx, query,
		reviewerID, req.RevieweeID, req.DeliveryID, req.Rating, req.Comment,
	))
	if err != nil {
		return nil, fmt.Errorf("storage.CreateReview: %w", err)
	}

	// Full-mean recomputation over all of the reviewee's reviews, including
	// the one just inserted.
	rollup := `
		UPDATE users SET
			rating = agg.avg_rating,
			review_count = agg.cnt
		FROM (
			SELECT AVG(rating)::float8 AS avg_rating, COUNT(*) AS cnt
			FROM reviews WHERE reviewee_id = $1
		) AS agg
		WHERE users.id = $1`
	if _, err := tx.Exec(ctx, rollup, req.RevieweeID); err != nil {
		return nil, fmt.Errorf("storage.CreateReview rollup: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("storage.CreateReview commit: %w", err)
	}
	return review, nil
}

func (p *Postgres) ListReviewsByReviewee(ctx context.Context, revieweeID int) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE reviewee_id = $1 ORDER BY id DESC`
	rows, err := p.db.Query(ctx, query, revieweeID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListReviewsByReviewee: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListReviewsByReviewee scan: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListReviewsByReviewee rows: %w", err)
	}
	return reviews, nil
}
