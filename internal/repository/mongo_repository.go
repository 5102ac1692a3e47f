package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/table-reservation/internal/model"
)

// reservationDoc is the stored shape of a reservation document.  The
// arrivalDate and activeSlot fields exist only to back the partial unique
// indexes created by database.EnsureMongoIndexes.
type reservationDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	GuestName           string             `bson:"guestName"`
	GuestPhone          string             `bson:"guestPhone"`
	GuestEmail          string             `bson:"guestEmail"`
	ExpectedArrivalTime string             `bson:"expectedArrivalTime"`
	ArrivalDate         string             `bson:"arrivalDate"`
	MealPeriod          string             `bson:"mealPeriod"`
	TableSize           int                `bson:"tableSize"`
	Status              string             `bson:"status"`
	ActiveSlot          bool               `bson:"activeSlot"`
	CreatedAt           time.Time          `bson:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt"`
}

func (d reservationDoc) toModel() model.Reservation {
	return model.Reservation{
		ID:                  d.ID.Hex(),
		GuestName:           d.GuestName,
		GuestPhone:          d.GuestPhone,
		GuestEmail:          d.GuestEmail,
		ExpectedArrivalTime: d.ExpectedArrivalTime,
		MealPeriod:          model.MealPeriod(d.MealPeriod),
		TableSize:           d.TableSize,
		Status:              model.ReservationStatus(d.Status),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// MongoReservationRepo stores reservations in a MongoDB collection.
type MongoReservationRepo struct{ coll *mongo.Collection }

func NewMongoReservationRepo(db *mongo.Database) *MongoReservationRepo {
	return &MongoReservationRepo{coll: db.Collection("reservations")}
}

func (r *MongoReservationRepo) Create(ctx context.Context, res model.Reservation) (*model.Reservation, error) {
	now := time.Now().UTC()
	doc := reservationDoc{
		ID:                  primitive.NewObjectID(),
		GuestName:           res.GuestName,
		GuestPhone:          res.GuestPhone,
		GuestEmail:          res.GuestEmail,
		ExpectedArrivalTime: res.ExpectedArrivalTime,
		ArrivalDate:         res.ArrivalDate(),
		MealPeriod:          string(res.MealPeriod),
		TableSize:           res.TableSize,
		Status:              string(res.Status),
		ActiveSlot:          !res.Status.Terminal(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.ErrSlotTaken
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

func (r *MongoReservationRepo) Update(ctx context.Context, id string, u model.ReservationUpdate) (*model.Reservation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.GuestName != nil {
		set["guestName"] = *u.GuestName
	}
	if u.GuestPhone != nil {
		set["guestPhone"] = *u.GuestPhone
	}
	if u.GuestEmail != nil {
		set["guestEmail"] = *u.GuestEmail
	}
	if u.ExpectedArrivalTime != nil {
		set["expectedArrivalTime"] = *u.ExpectedArrivalTime
		set["arrivalDate"] = model.Reservation{ExpectedArrivalTime: *u.ExpectedArrivalTime}.ArrivalDate()
	}
	if u.MealPeriod != nil {
		set["mealPeriod"] = string(*u.MealPeriod)
	}
	if u.TableSize != nil {
		set["tableSize"] = *u.TableSize
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
		set["activeSlot"] = !u.Status.Terminal()
	}
	var doc reservationDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.ErrSlotTaken
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

func (r *MongoReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.MealPeriod != "" {
		filter["mealPeriod"] = string(f.MealPeriod)
	}
	if f.Date != "" {
		filter["expectedArrivalTime"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Date)}
	}
	switch {
	case f.GuestEmail != "" && f.GuestPhone != "":
		filter["$or"] = bson.A{bson.M{"guestEmail": f.GuestEmail}, bson.M{"guestPhone": f.GuestPhone}}
	case f.GuestEmail != "":
		filter["guestEmail"] = f.GuestEmail
	case f.GuestPhone != "":
		filter["guestPhone"] = f.GuestPhone
	}
	opts := options.Find().SetSort(bson.D{{Key: "expectedArrivalTime", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []model.Reservation{}
	for cur.Next(ctx) {
		var doc reservationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toModel())
	}
	return out, cur.Err()
}

func (r *MongoReservationRepo) FindConflict(ctx context.Context, q model.ConflictQuery) (*model.Reservation, error) {
	var who bson.A
	if q.GuestEmail != "" {
		who = append(who, bson.M{"guestEmail": q.GuestEmail})
	}
	if q.GuestPhone != "" {
		who = append(who, bson.M{"guestPhone": q.GuestPhone})
	}
	if len(who) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"arrivalDate": q.Date,
		"mealPeriod":  string(q.MealPeriod),
		"activeSlot":  true,
		"$or":         who,
	}
	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	return r.findOne(ctx, filter)
}

func (r *MongoReservationRepo) findOne(ctx context.Context, filter bson.M) (*model.Reservation, error) {
	var doc reservationDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone"`
	Role         string             `bson:"role"`
	PasswordHash string             `bson:"passwordHash"`
}

// MongoUserRepo stores users in the "users" collection.
type MongoUserRepo struct{ coll *mongo.Collection }

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users")}
}

func (r *MongoUserRepo) Create(ctx context.Context, u model.User) (*model.User, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        normalizeEmail(u.Email),
		Phone:        u.Phone,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "phone") {
				return nil, ErrPhoneExists
			}
			return nil, ErrEmailExists
		}
		return nil, err
	}
	u.ID = doc.ID.Hex()
	u.Email = doc.Email
	return &u, nil
}

func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *MongoUserRepo) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"phone": strings.TrimSpace(phone)})
}

func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &model.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		Phone:        doc.Phone,
		Role:         model.Role(doc.Role),
		PasswordHash: doc.PasswordHash,
	}, nil
}
