package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type qdrantConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type qdrantStore struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
}

func init() {
	Register("qdrant", createQdrantStore)
}

func createQdrantStore(deps Deps, args interface{}) (Store, error) {
	cfg := &qdrantConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &qdrantStore{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: deps.Collection,
	}, nil
}

func (s *qdrantStore) Upsert(ctx context.Context, records []Record) error {
	points := make([]*pb.PointStruct, len(records))
	for i, rec := range records {
		payload := map[string]*pb.Value{
			"chunk_id": {Kind: &pb.Value_StringValue{StringValue: rec.ChunkID}},
			"chunk":    {Kind: &pb.Value_StringValue{StringValue: rec.Text}},
		}
		for k, v := range rec.Payload {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
		}
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(rec.ChunkID)}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: rec.Vector}}},
			Payload: payload,
		}
	}
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	return err
}

func (s *qdrantStore) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(resp.Result))
	for i, pt := range resp.Result {
		hit := Hit{Score: pt.Score, Payload: make(map[string]string)}
		for k, v := range pt.Payload {
			switch k {
			case "chunk_id":
				hit.ChunkID = v.GetStringValue()
			case "chunk":
				hit.Text = v.GetStringValue()
			default:
				hit.Payload[k] = v.GetStringValue()
			}
		}
		hits[i] = hit
	}
	return hits, nil
}

func (s *qdrantStore) Close() error {
	return s.conn.Close()
}

// Qdrant accepts only UUID or integer point ids, so the id is a
// deterministic UUID derived from the chunk id; the chunk id itself lives
// in the payload.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
