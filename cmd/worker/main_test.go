package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"engunity-backend/internal/bootstrap"
	"engunity-backend/internal/documents"
	"engunity-backend/internal/queue"
	localstore "engunity-backend/internal/shared/storage/object/local"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = ctx
	_ = params
	_ = optFns
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func testApp(t *testing.T) (*bootstrap.App, *documents.MemoryRepo) {
	t.Helper()
	repo := documents.NewMemoryRepo()
	store := localstore.New(t.TempDir())
	svc := &documents.Service{
		Primary:         repo,
		Store:           store,
		StorageProvider: "local",
	}
	return &bootstrap.App{Documents: svc}, repo
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	app, repo := testApp(t)
	ctx := context.Background()

	docID := "64b0c8f2e4b0a1d2c3e4f510"
	key := "docs/user-1/notes.txt"
	if _, err := app.Documents.Store.SaveWithKey(ctx, key, "text/plain", strings.NewReader("hello world")); err != nil {
		t.Fatalf("seed object: %v", err)
	}
	if err := repo.Create(ctx, documents.Document{
		ID:               docID,
		UserID:           "user-1",
		FileName:         "notes.txt",
		MimeType:         "text/plain",
		StorageKey:       key,
		ProcessingStatus: documents.StatusUploaded,
		CreatedAt:        time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	client := &fakeSQS{}
	msgBody, _ := queue.EncodeMessage(queue.Message{DocumentID: docID, UserID: "user-1", RequestID: "req-1"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(msgBody)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	handleMessage(ctx, app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	doc, err := repo.GetByID(ctx, "user-1", docID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc.ProcessingStatus != documents.StatusProcessed {
		t.Fatalf("status = %s, want processed", doc.ProcessingStatus)
	}
}

func TestWorkerDoesNotDeleteOnFailure(t *testing.T) {
	app, _ := testApp(t)

	client := &fakeSQS{}
	msgBody, _ := queue.EncodeMessage(queue.Message{DocumentID: "64b0c8f2e4b0a1d2c3e4f511", UserID: "user-1", RequestID: "req-2"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String(string(msgBody)),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	app, _ := testApp(t)

	client := &fakeSQS{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}
