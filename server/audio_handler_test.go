package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Garicore01/PlayBeat-Backend/config"
	"github.com/Garicore01/PlayBeat-Backend/core/auth"
	"github.com/Garicore01/PlayBeat-Backend/core/notify"
	"github.com/Garicore01/PlayBeat-Backend/core/relation"
	"github.com/Garicore01/PlayBeat-Backend/db"
	"github.com/Garicore01/PlayBeat-Backend/model"
	"github.com/Garicore01/PlayBeat-Backend/repository"
	"github.com/Garicore01/PlayBeat-Backend/storage"

	"github.com/gorilla/mux"
	"github.com/minio/minio-go/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeStore is an in-memory ObjectStore so upload and streaming paths run
// without a bucket.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	removed    []string
	promoteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) PromoteFile(ctx context.Context, localPath, objectKey, contentType string) error {
	if f.promoteErr != nil {
		return f.promoteErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[objectKey] = data
	f.mu.Unlock()
	return os.Remove(localPath)
}

func (f *fakeStore) OpenObject(ctx context.Context, objectKey string) (io.ReadSeekCloser, error) {
	f.mu.Lock()
	data, ok := f.objects[objectKey]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectKey)
	}
	return readSeekNopCloser{bytes.NewReader(data)}, nil
}

func (f *fakeStore) StatObject(ctx context.Context, objectKey string) (minio.ObjectInfo, error) {
	f.mu.Lock()
	data, ok := f.objects[objectKey]
	f.mu.Unlock()
	if !ok {
		return minio.ObjectInfo{}, fmt.Errorf("object %s not found", objectKey)
	}
	return minio.ObjectInfo{Key: objectKey, Size: int64(len(data)), LastModified: time.Now()}, nil
}

func (f *fakeStore) RemoveObject(ctx context.Context, objectKey string) error {
	f.mu.Lock()
	delete(f.objects, objectKey)
	f.removed = append(f.removed, objectKey)
	f.mu.Unlock()
	return nil
}

type readSeekNopCloser struct{ *bytes.Reader }

func (readSeekNopCloser) Close() error { return nil }

// testEnv is the full router wired onto an in-memory database, a fake object
// store and a temp-dir upload spool.
type testEnv struct {
	router  *mux.Router
	gdb     *gorm.DB
	store   *fakeStore
	handler *APIHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named shared-cache database keeps all pooled connections on the
	// same in-memory store.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	spool, err := storage.NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test spool: %v", err)
	}

	store := newFakeStore()
	handler := NewAPIHandler(
		repository.NewGormUserRepository(gdb),
		repository.NewGormAudioRepository(gdb),
		repository.NewGormListRepository(gdb),
		repository.NewGormTagRepository(gdb),
		repository.NewGormReconciliationRepository(gdb),
		relation.NewSynchronizer(gdb),
		store,
		spool,
		notify.NewHub(),
		auth.NewTokenIssuer("test-secret", time.Hour),
		&config.Config{},
	)
	return &testEnv{router: NewRouter(handler), gdb: gdb, store: store, handler: handler}
}

// seedAudio inserts an audio owned by the given users directly in the store.
func seedAudio(t *testing.T, gdb *gorm.DB, title string, isPrivate bool, owners ...model.User) int64 {
	t.Helper()
	audio := model.Audio{Title: title, IsPrivate: isPrivate, Artists: owners}
	if err := gdb.Create(&audio).Error; err != nil {
		t.Fatalf("failed to seed audio: %v", err)
	}
	return audio.ID
}

// adminToken issues a token for a directly-seeded admin account.
func adminToken(t *testing.T, gdb *gorm.DB) string {
	t.Helper()
	admin := model.User{Username: "admin", Email: "admin@example.com", IsAdmin: true}
	if err := gdb.Create(&admin).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	token, err := auth.NewTokenIssuer("test-secret", time.Hour).GenerateToken(admin.ID, true)
	if err != nil {
		t.Fatalf("failed to issue admin token: %v", err)
	}
	return token
}

// doMultipart sends a multipart form; a file part is attached when filename
// is non-empty.
func doMultipart(t *testing.T, router *mux.Router, method, path, token string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func createAudioFields() map[string]string {
	return map[string]string{
		"title":       "X",
		"duration":    "120",
		"releaseDate": "2024-01-01",
		"isAlbum":     "false",
		"isPrivate":   "true",
	}
}

func TestCreateAudio(t *testing.T) {
	env := newTestEnv(t)

	creatorID, creatorToken := registerUser(t, env.router, "creator")
	_, strangerToken := registerUser(t, env.router, "stranger")
	admin := adminToken(t, env.gdb)

	resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", creatorToken,
		createAudioFields(), "x.mp3", []byte("audio bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if body.ID == 0 || body.Message == "" {
		t.Fatalf("create response = %+v, expected message and id", body)
	}

	// The creator is the sole owner.
	var audio model.Audio
	if err := env.gdb.Preload("Artists").First(&audio, body.ID).Error; err != nil {
		t.Fatal(err)
	}
	if len(audio.Artists) != 1 || audio.Artists[0].ID != creatorID {
		t.Errorf("owners = %+v, expected just the creator", audio.Artists)
	}

	// The upload was promoted out of the spool into object storage.
	if got := env.store.objects[audio.StoragePath]; string(got) != "audio bytes" {
		t.Errorf("stored object = %q, expected the uploaded bytes", got)
	}

	// Private: stranger forbidden, admin readable.
	path := fmt.Sprintf("/api/audio/%d", body.ID)
	if resp := doRequest(t, env.router, http.MethodGet, path, strangerToken, nil); resp.Code != http.StatusForbidden {
		t.Errorf("stranger read: status = %d, expected 403", resp.Code)
	}
	if resp := doRequest(t, env.router, http.MethodGet, path, admin, nil); resp.Code != http.StatusOK {
		t.Errorf("admin read: status = %d, expected 200", resp.Code)
	}
}

func TestCreateAudioOwnerUnion(t *testing.T) {
	env := newTestEnv(t)

	creatorID, creatorToken := registerUser(t, env.router, "creator")
	otherID, _ := registerUser(t, env.router, "other")

	fields := createAudioFields()
	fields["ownerIds"] = fmt.Sprintf("%d", otherID)
	resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", creatorToken,
		fields, "x.mp3", []byte("audio bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	// The creator joins the owner set even with an explicit owner list.
	var audio model.Audio
	if err := env.gdb.Preload("Artists").First(&audio, body.ID).Error; err != nil {
		t.Fatal(err)
	}
	owners := map[int64]bool{}
	for _, artist := range audio.Artists {
		owners[artist.ID] = true
	}
	if len(owners) != 2 || !owners[creatorID] || !owners[otherID] {
		t.Errorf("owners = %+v, expected creator and other", audio.Artists)
	}
}

func TestCreateAudioRejectsUnknownOwner(t *testing.T) {
	env := newTestEnv(t)
	_, token := registerUser(t, env.router, "creator")

	fields := createAudioFields()
	fields["ownerIds"] = "9999"
	resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", token,
		fields, "x.mp3", []byte("audio bytes"))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("create with unknown owner: status = %d, expected 404", resp.Code)
	}

	// Nothing was persisted or promoted.
	var count int64
	env.gdb.Model(&model.Audio{}).Count(&count)
	if count != 0 {
		t.Errorf("audio rows = %d after rejected create, expected 0", count)
	}
	if len(env.store.objects) != 0 {
		t.Errorf("objects = %v after rejected create, expected none", env.store.objects)
	}
}

func TestCreateAudioValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := registerUser(t, env.router, "creator")

	tests := []struct {
		name   string
		mutate func(map[string]string)
		want   int
	}{
		{"missing title", func(f map[string]string) { delete(f, "title") }, http.StatusBadRequest},
		{"bad duration", func(f map[string]string) { f["duration"] = "abc" }, http.StatusBadRequest},
		{"bad release date", func(f map[string]string) { f["releaseDate"] = "01/01/2024" }, http.StatusBadRequest},
		{"tag type without tags", func(f map[string]string) { f["tagType"] = "Song" }, http.StatusBadRequest},
		{"tags with unknown type", func(f map[string]string) { f["tags"] = "1"; f["tagType"] = "Genre" }, http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fields := createAudioFields()
			test.mutate(fields)
			resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", token,
				fields, "x.mp3", []byte("audio bytes"))
			if resp.Code != test.want {
				t.Errorf("status = %d, expected %d, body = %s", resp.Code, test.want, resp.Body.String())
			}
		})
	}

	// No file part at all.
	if resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", token, createAudioFields(), "", nil); resp.Code != http.StatusBadRequest {
		t.Errorf("no file: status = %d, expected 400", resp.Code)
	}
}

func TestCreateAudioWithTags(t *testing.T) {
	env := newTestEnv(t)
	_, token := registerUser(t, env.router, "creator")

	tag := model.Tag{Name: "Rock", Type: model.TagTypeSong}
	if err := env.gdb.Create(&tag).Error; err != nil {
		t.Fatal(err)
	}

	fields := createAudioFields()
	fields["tags"] = fmt.Sprintf("%d", tag.ID)
	fields["tagType"] = "Song"
	resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", token,
		fields, "x.mp3", []byte("audio bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	var audio model.Audio
	if err := env.gdb.Preload("SongTags").Preload("PodcastTags").First(&audio, body.ID).Error; err != nil {
		t.Fatal(err)
	}
	if len(audio.SongTags) != 1 || audio.SongTags[0].ID != tag.ID {
		t.Errorf("SongTags = %+v, expected the linked tag", audio.SongTags)
	}
	if len(audio.PodcastTags) != 0 {
		t.Errorf("PodcastTags = %+v, expected empty", audio.PodcastTags)
	}
}

func TestCreateAudioPromotionFailure(t *testing.T) {
	env := newTestEnv(t)
	_, token := registerUser(t, env.router, "creator")

	env.store.promoteErr = fmt.Errorf("bucket unavailable")

	// The row committed, so the request succeeds and the stranded promotion
	// is recorded for the reconcile pass.
	resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", token,
		createAudioFields(), "x.mp3", []byte("audio bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("create with failed promotion: status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var pending []model.Reconciliation
	if err := env.gdb.Where("resolved_at IS NULL").Find(&pending).Error; err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Action != "promote_object" {
		t.Fatalf("pending reconciliations = %+v, expected one promote_object entry", pending)
	}
	// The entry's reason carries the spool path so the reconcile pass can
	// replay the upload.
	if _, err := os.Stat(pending[0].Reason); err != nil {
		t.Errorf("spool file %q gone before reconciliation: %v", pending[0].Reason, err)
	}
}

func TestCreateAudioPromotionAndFlagFailure(t *testing.T) {
	env := newTestEnv(t)
	_, token := registerUser(t, env.router, "creator")

	env.store.promoteErr = fmt.Errorf("bucket unavailable")
	env.handler.reconRepo = failingReconRepo{}

	// With no reconciliation entry possible the inconsistency is surfaced.
	resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", token,
		createAudioFields(), "x.mp3", []byte("audio bytes"))
	if resp.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Audio stored but file promotion failed") {
		t.Errorf("body = %q", resp.Body.String())
	}
}

type failingReconRepo struct{}

func (failingReconRepo) Add(ctx context.Context, rec *model.Reconciliation) error {
	return fmt.Errorf("reconciliation store down")
}

func (failingReconRepo) Pending(ctx context.Context) ([]*model.Reconciliation, error) {
	return nil, nil
}

func (failingReconRepo) Resolve(ctx context.Context, id int64) error { return nil }

func TestGetAudioAccessControl(t *testing.T) {
	router, gdb := newTestServer(t)

	ownerID, ownerToken := registerUser(t, router, "owner")
	_, strangerToken := registerUser(t, router, "stranger")
	admin := adminToken(t, gdb)

	var owner model.User
	if err := gdb.First(&owner, ownerID).Error; err != nil {
		t.Fatal(err)
	}

	privateID := seedAudio(t, gdb, "Private track", true, owner)
	publicID := seedAudio(t, gdb, "Public track", false, owner)
	// An audio whose ownership rows were lost. Private reads cannot resolve
	// it and must surface not found.
	orphanID := seedAudio(t, gdb, "Orphan track", true)

	tests := []struct {
		name  string
		id    int64
		token string
		want  int
	}{
		{"owner reads private", privateID, ownerToken, http.StatusOK},
		{"stranger reads private", privateID, strangerToken, http.StatusForbidden},
		{"admin reads private", privateID, admin, http.StatusOK},
		{"stranger reads public", publicID, strangerToken, http.StatusOK},
		{"orphaned private audio", orphanID, ownerToken, http.StatusNotFound},
		{"missing audio", 9999, ownerToken, http.StatusNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/audio/%d", test.id), test.token, nil)
			if resp.Code != test.want {
				t.Errorf("status = %d, expected %d, body = %s", resp.Code, test.want, resp.Body.String())
			}
		})
	}

	// The read payload carries artists but never the storage key.
	resp := doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/audio/%d", publicID), strangerToken, nil)
	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode audio: %v", err)
	}
	if _, leaked := body["StoragePath"]; leaked {
		t.Error("response leaks the storage path")
	}
	if artists, ok := body["artists"].([]interface{}); !ok || len(artists) != 1 {
		t.Errorf("artists = %v, expected one entry", body["artists"])
	}
}

func TestStreamAudio(t *testing.T) {
	env := newTestEnv(t)

	_, token := registerUser(t, env.router, "creator")
	resp := doMultipart(t, env.router, http.MethodPost, "/api/audio", token,
		createAudioFields(), "x.mp3", []byte("audio bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("create: status = %d", resp.Code)
	}
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	resp = doRequest(t, env.router, http.MethodGet, fmt.Sprintf("/api/audio/%d/stream", body.ID), token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("stream: status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if resp.Body.String() != "audio bytes" {
		t.Errorf("stream body = %q", resp.Body.String())
	}

	// Missing backing object reports not found.
	var audio model.Audio
	if err := env.gdb.First(&audio, body.ID).Error; err != nil {
		t.Fatal(err)
	}
	if err := env.store.RemoveObject(context.Background(), audio.StoragePath); err != nil {
		t.Fatal(err)
	}
	resp = doRequest(t, env.router, http.MethodGet, fmt.Sprintf("/api/audio/%d/stream", body.ID), token, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("stream with missing object: status = %d, expected 404", resp.Code)
	}
}

func TestUpdateAudioMetadata(t *testing.T) {
	router, gdb := newTestServer(t)

	ownerID, ownerToken := registerUser(t, router, "owner")
	_, strangerToken := registerUser(t, router, "stranger")

	var owner model.User
	if err := gdb.First(&owner, ownerID).Error; err != nil {
		t.Fatal(err)
	}
	audioID := seedAudio(t, gdb, "Original", false, owner)
	path := fmt.Sprintf("/api/audio/%d", audioID)

	if resp := doMultipart(t, router, http.MethodPut, path, strangerToken, map[string]string{"title": "Hijacked"}, "", nil); resp.Code != http.StatusForbidden {
		t.Errorf("stranger update: status = %d, expected 403", resp.Code)
	}

	resp := doMultipart(t, router, http.MethodPut, path, ownerToken, map[string]string{
		"title":     "Renamed",
		"isPrivate": "true",
	}, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("owner update: status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var audio model.Audio
	if err := gdb.First(&audio, audioID).Error; err != nil {
		t.Fatal(err)
	}
	if audio.Title != "Renamed" || !audio.IsPrivate {
		t.Errorf("audio after patch = %+v", audio)
	}

	if resp := doMultipart(t, router, http.MethodPut, path, ownerToken, map[string]string{"duration": "-5"}, "", nil); resp.Code != http.StatusBadRequest {
		t.Errorf("negative duration: status = %d, expected 400", resp.Code)
	}
	if resp := doMultipart(t, router, http.MethodPut, path, ownerToken, map[string]string{"tagType": "Song"}, "", nil); resp.Code != http.StatusBadRequest {
		t.Errorf("tag type without tags: status = %d, expected 400", resp.Code)
	}
}

func TestUpdateAudioReplacesFile(t *testing.T) {
	env := newTestEnv(t)

	ownerID, ownerToken := registerUser(t, env.router, "owner")
	var owner model.User
	if err := env.gdb.First(&owner, ownerID).Error; err != nil {
		t.Fatal(err)
	}
	audio := model.Audio{Title: "Track", StoragePath: "audio/old.mp3", Artists: []model.User{owner}}
	if err := env.gdb.Create(&audio).Error; err != nil {
		t.Fatal(err)
	}
	env.store.objects["audio/old.mp3"] = []byte("old bytes")

	resp := doMultipart(t, env.router, http.MethodPut, fmt.Sprintf("/api/audio/%d", audio.ID), ownerToken,
		nil, "new.mp3", []byte("new bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("replace: status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var updated model.Audio
	if err := env.gdb.First(&updated, audio.ID).Error; err != nil {
		t.Fatal(err)
	}
	if updated.StoragePath == "audio/old.mp3" || updated.StoragePath == "" {
		t.Fatalf("StoragePath = %q, expected a new key", updated.StoragePath)
	}
	if got := env.store.objects[updated.StoragePath]; string(got) != "new bytes" {
		t.Errorf("stored object = %q, expected the replacement bytes", got)
	}
	if _, stale := env.store.objects["audio/old.mp3"]; stale {
		t.Error("replaced object was not removed")
	}
}

func TestUpdateAudioRejectedTagKeepsFile(t *testing.T) {
	env := newTestEnv(t)

	ownerID, ownerToken := registerUser(t, env.router, "owner")
	var owner model.User
	if err := env.gdb.First(&owner, ownerID).Error; err != nil {
		t.Fatal(err)
	}
	audio := model.Audio{Title: "Track", StoragePath: "audio/old.mp3", Artists: []model.User{owner}}
	if err := env.gdb.Create(&audio).Error; err != nil {
		t.Fatal(err)
	}
	env.store.objects["audio/old.mp3"] = []byte("old bytes")

	tag := model.Tag{Name: "Rock", Type: model.TagTypeSong}
	if err := env.gdb.Create(&tag).Error; err != nil {
		t.Fatal(err)
	}

	// A replacement file plus a mismatched tag type: the rejected link must
	// leave the row pointing at the still-streamable old object.
	resp := doMultipart(t, env.router, http.MethodPut, fmt.Sprintf("/api/audio/%d", audio.ID), ownerToken,
		map[string]string{"tags": fmt.Sprintf("%d", tag.ID), "tagType": "Podcast"},
		"new.mp3", []byte("new bytes"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("mismatched tag type: status = %d, expected 400", resp.Code)
	}

	var updated model.Audio
	if err := env.gdb.First(&updated, audio.ID).Error; err != nil {
		t.Fatal(err)
	}
	if updated.StoragePath != "audio/old.mp3" {
		t.Errorf("StoragePath = %q, expected the original key", updated.StoragePath)
	}
	streamPath := fmt.Sprintf("/api/audio/%d/stream", audio.ID)
	if resp := doRequest(t, env.router, http.MethodGet, streamPath, ownerToken, nil); resp.Code != http.StatusOK {
		t.Errorf("stream after rejected update: status = %d, expected 200", resp.Code)
	}
}

func TestUpdateAudioLinksTags(t *testing.T) {
	router, gdb := newTestServer(t)

	ownerID, ownerToken := registerUser(t, router, "owner")
	var owner model.User
	if err := gdb.First(&owner, ownerID).Error; err != nil {
		t.Fatal(err)
	}
	audioID := seedAudio(t, gdb, "Track", false, owner)

	tag := model.Tag{Name: "Rock", Type: model.TagTypeSong}
	if err := gdb.Create(&tag).Error; err != nil {
		t.Fatal(err)
	}

	path := fmt.Sprintf("/api/audio/%d", audioID)
	resp := doMultipart(t, router, http.MethodPut, path, ownerToken, map[string]string{
		"tags":    fmt.Sprintf("%d", tag.ID),
		"tagType": "Song",
	}, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("tag link update: status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var audio model.Audio
	if err := gdb.Preload("SongTags").First(&audio, audioID).Error; err != nil {
		t.Fatal(err)
	}
	if len(audio.SongTags) != 1 || audio.SongTags[0].ID != tag.ID {
		t.Errorf("SongTags = %+v, expected the linked tag", audio.SongTags)
	}

	// A mismatched type is rejected and leaves the sets unchanged.
	resp = doMultipart(t, router, http.MethodPut, path, ownerToken, map[string]string{
		"tags":    fmt.Sprintf("%d", tag.ID),
		"tagType": "Podcast",
	}, "", nil)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("mismatched tag type: status = %d, expected 400", resp.Code)
	}
	audio = model.Audio{}
	if err := gdb.Preload("PodcastTags").First(&audio, audioID).Error; err != nil {
		t.Fatal(err)
	}
	if len(audio.PodcastTags) != 0 {
		t.Errorf("PodcastTags = %+v, expected empty after rejected link", audio.PodcastTags)
	}
}

func TestDeleteAudio(t *testing.T) {
	env := newTestEnv(t)

	ownerID, ownerToken := registerUser(t, env.router, "owner")
	_, strangerToken := registerUser(t, env.router, "stranger")

	var owner model.User
	if err := env.gdb.First(&owner, ownerID).Error; err != nil {
		t.Fatal(err)
	}
	audio := model.Audio{Title: "Doomed", StoragePath: "audio/doomed.mp3", Artists: []model.User{owner}}
	if err := env.gdb.Create(&audio).Error; err != nil {
		t.Fatal(err)
	}
	env.store.objects["audio/doomed.mp3"] = []byte("bytes")
	path := fmt.Sprintf("/api/audio/%d", audio.ID)

	// A denied delete leaves row and object untouched.
	if resp := doRequest(t, env.router, http.MethodDelete, path, strangerToken, nil); resp.Code != http.StatusForbidden {
		t.Errorf("stranger delete: status = %d, expected 403", resp.Code)
	}
	if _, ok := env.store.objects["audio/doomed.mp3"]; !ok {
		t.Error("object removed by a denied delete")
	}

	if resp := doRequest(t, env.router, http.MethodDelete, path, ownerToken, nil); resp.Code != http.StatusOK {
		t.Fatalf("owner delete: status = %d", resp.Code)
	}
	if _, ok := env.store.objects["audio/doomed.mp3"]; ok {
		t.Error("backing object survived the delete")
	}

	if resp := doRequest(t, env.router, http.MethodGet, path, ownerToken, nil); resp.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, expected 404", resp.Code)
	}
}
