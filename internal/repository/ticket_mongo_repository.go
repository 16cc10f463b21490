package repository

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deskline/helpdesk-service/internal/domain"
)

// TicketsCollection is the Mongo collection holding ticket documents.
const TicketsCollection = "tickets"

type ticketDocument struct {
	ID          string            `bson:"_id"`
	Title       string            `bson:"title"`
	Description string            `bson:"description"`
	Status      string            `bson:"status"`
	Priority    string            `bson:"priority"`
	Category    string            `bson:"category"`
	Owner       string            `bson:"owner"`
	AssignedTo  *string           `bson:"assignedTo,omitempty"`
	Comments    []commentDocument `bson:"comments"`
	CreatedAt   time.Time         `bson:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt"`
}

type commentDocument struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	UserID    string    `bson:"userId"`
	CreatedAt time.Time `bson:"createdAt"`
}

type ticketMongoRepository struct {
	coll *mongo.Collection
}

// NewTicketMongoRepository returns a document store implementation.
func NewTicketMongoRepository(db *mongo.Database) TicketRepository {
	return &ticketMongoRepository{coll: db.Collection(TicketsCollection)}
}

func (r *ticketMongoRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	_, err := r.coll.InsertOne(ctx, toTicketDocument(ticket))
	return translate(err)
}

func (r *ticketMongoRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var doc ticketDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

func (r *ticketMongoRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, mongoTicketFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []domain.Ticket{}
	for cursor.Next(ctx) {
		var doc ticketDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, *doc.toDomain())
	}
	return result, cursor.Err()
}

func (r *ticketMongoRepository) UpdateFields(ctx context.Context, id string, patch TicketPatch, updatedAt time.Time) (*domain.Ticket, error) {
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, literalField("title", *patch.Title))
	}
	if patch.Description != nil {
		set = append(set, literalField("description", *patch.Description))
	}
	if patch.Status != nil {
		set = append(set, literalField("status", string(*patch.Status)))
	}
	if patch.Priority != nil {
		set = append(set, literalField("priority", string(*patch.Priority)))
	}
	if patch.Category != nil {
		set = append(set, literalField("category", *patch.Category))
	}
	return r.findOneAndUpdate(ctx, id, ticketUpdatePipeline(set, updatedAt))
}

func (r *ticketMongoRepository) AppendComment(ctx context.Context, id string, comment domain.Comment, updatedAt time.Time) (*domain.Ticket, error) {
	push := bson.E{Key: "comments", Value: bson.M{"$concatArrays": bson.A{
		bson.M{"$ifNull": bson.A{"$comments", bson.A{}}},
		bson.A{bson.M{"$literal": toCommentDocument(comment)}},
	}}}
	return r.findOneAndUpdate(ctx, id, ticketUpdatePipeline(bson.D{push}, updatedAt))
}

func (r *ticketMongoRepository) SetAssignee(ctx context.Context, id, assigneeID string, updatedAt time.Time) (*domain.Ticket, error) {
	set := bson.D{literalField("assignedTo", assigneeID)}
	return r.findOneAndUpdate(ctx, id, ticketUpdatePipeline(set, updatedAt))
}

func (r *ticketMongoRepository) findOneAndUpdate(ctx context.Context, id string, update mongo.Pipeline) (*domain.Ticket, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ticketDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain(), nil
}

// mongoTicketFilter builds the find filter. The search term matches title or
// description as a case-insensitive literal substring.
func mongoTicketFilter(filter TicketFilter) bson.M {
	query := bson.M{}
	if filter.OwnerID != nil {
		query["owner"] = *filter.OwnerID
	}
	if filter.AssigneeID != nil {
		query["assignedTo"] = *filter.AssigneeID
	}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.Priority != nil {
		query["priority"] = string(*filter.Priority)
	}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(*filter.SearchTerm)), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

// ticketUpdatePipeline applies set and moves updatedAt to the later of
// updatedAt and one millisecond past the stored value, so concurrent writers
// never move it backwards.
func ticketUpdatePipeline(set bson.D, updatedAt time.Time) mongo.Pipeline {
	set = append(set, bson.E{Key: "updatedAt", Value: bson.M{"$max": bson.A{
		bson.M{"$add": bson.A{"$updatedAt", int64(1)}},
		updatedAt,
	}}})
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// literalField keeps user text such as "$5 refund" from being read as a field
// path inside an update pipeline.
func literalField(key string, value any) bson.E {
	return bson.E{Key: key, Value: bson.M{"$literal": value}}
}

func toTicketDocument(ticket *domain.Ticket) ticketDocument {
	// comments must be stored as an array, never null, so $push works.
	comments := make([]commentDocument, 0, len(ticket.Comments))
	for _, c := range ticket.Comments {
		comments = append(comments, toCommentDocument(c))
	}
	return ticketDocument{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		Priority:    string(ticket.Priority),
		Category:    ticket.Category,
		Owner:       ticket.OwnerID,
		AssignedTo:  ticket.AssigneeID,
		Comments:    comments,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func toCommentDocument(c domain.Comment) commentDocument {
	return commentDocument{ID: c.ID, Content: c.Content, UserID: c.AuthorID, CreatedAt: c.CreatedAt}
}

func (d *ticketDocument) toDomain() *domain.Ticket {
	ticket := &domain.Ticket{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TicketStatus(d.Status),
		Priority:    domain.TicketPriority(d.Priority),
		Category:    d.Category,
		OwnerID:     d.Owner,
		AssigneeID:  d.AssignedTo,
		Comments:    make([]domain.Comment, 0, len(d.Comments)),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	for _, c := range d.Comments {
		ticket.Comments = append(ticket.Comments, domain.Comment{
			ID:        c.ID,
			Content:   c.Content,
			AuthorID:  c.UserID,
			CreatedAt: c.CreatedAt.UTC(),
		})
	}
	return ticket
}
