package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tasky/apperr"
	"tasky/model"
)

// DefaultCollection is the Firestore collection holding task documents.
const DefaultCollection = "Tasks"

type subTaskDocument struct {
	Title string    `firestore:"title"`
	Date  time.Time `firestore:"date"`
	Tag   string    `firestore:"tag,omitempty"`
}

type activityDocument struct {
	Type     string    `firestore:"type"`
	Activity string    `firestore:"activity"`
	Date     time.Time `firestore:"date"`
	By       string    `firestore:"by,omitempty"`
}

// taskDocument is the stored shape of a task. isTrashed and stage are never
// omitted because list queries filter on them.
type taskDocument struct {
	TaskID     string             `firestore:"taskid"`
	Title      string             `firestore:"title"`
	Date       time.Time          `firestore:"date"`
	Priority   string             `firestore:"priority"`
	Stage      string             `firestore:"stage"`
	IsTrashed  bool               `firestore:"isTrashed"`
	Team       []string           `firestore:"team"`
	Assets     []string           `firestore:"assets"`
	SubTasks   []subTaskDocument  `firestore:"subTasks"`
	Activities []activityDocument `firestore:"activities"`
	CreatedBy  string             `firestore:"createdby,omitempty"`
	CreatedAt  time.Time          `firestore:"createdat"`
	UpdatedAt  time.Time          `firestore:"updatedat"`
}

// FirestoreStore keeps one document per task, keyed by task id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

func (s *FirestoreStore) doc(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func (s *FirestoreStore) Create(ctx context.Context, t *model.Task) error {
	if _, err := s.doc(t.ID).Create(ctx, toDocument(t)); err != nil {
		return classify("create task", t.ID, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*model.Task, error) {
	snap, err := s.doc(id).Get(ctx)
	if err != nil {
		return nil, classify("get task", id, err)
	}
	return decode(snap)
}

func (s *FirestoreStore) List(ctx context.Context, q Query) ([]*model.Task, error) {
	query := s.client.Collection(s.collection).Where("isTrashed", "==", q.Trashed)
	if q.Stage != "" {
		query = query.Where("stage", "==", string(q.Stage))
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var tasks []*model.Task
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify("list tasks", "", err)
		}
		t, err := decode(snap)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *FirestoreStore) Update(ctx context.Context, id string, patch model.TaskPatch, at time.Time) (*model.Task, error) {
	var updates []firestore.Update
	if patch.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *patch.Title})
	}
	if patch.Date != nil {
		updates = append(updates, firestore.Update{Path: "date", Value: *patch.Date})
	}
	if patch.Priority != nil {
		updates = append(updates, firestore.Update{Path: "priority", Value: string(*patch.Priority)})
	}
	if patch.Stage != nil {
		updates = append(updates, firestore.Update{Path: "stage", Value: string(*patch.Stage)})
	}
	if patch.Team != nil {
		updates = append(updates, firestore.Update{Path: "team", Value: nonNil(*patch.Team)})
	}
	if patch.Assets != nil {
		updates = append(updates, firestore.Update{Path: "assets", Value: nonNil(*patch.Assets)})
	}
	updates = append(updates, firestore.Update{Path: "updatedat", Value: at})

	ref := s.doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var d taskDocument
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		if d.IsTrashed {
			return apperr.NotFound(id)
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return nil, classify("update task", id, err)
	}
	return s.Get(ctx, id)
}

func (s *FirestoreStore) AppendSubTask(ctx context.Context, id string, sub model.SubTask, at time.Time) error {
	return s.appendInTx(ctx, id, "append subtask", func(d *taskDocument) []firestore.Update {
		d.SubTasks = append(d.SubTasks, subTaskDocument{Title: sub.Title, Date: sub.Date, Tag: sub.Tag})
		return []firestore.Update{
			{Path: "subTasks", Value: d.SubTasks},
			{Path: "updatedat", Value: at},
		}
	})
}

func (s *FirestoreStore) AppendActivity(ctx context.Context, id string, a model.Activity, at time.Time) error {
	return s.appendInTx(ctx, id, "append activity", func(d *taskDocument) []firestore.Update {
		d.Activities = append(d.Activities, activityDocument{
			Type:     string(a.Type),
			Activity: a.Activity,
			Date:     a.Date,
			By:       a.By,
		})
		return []firestore.Update{
			{Path: "activities", Value: d.Activities},
			{Path: "updatedat", Value: at},
		}
	})
}

// appendInTx runs a read-modify-write of one document in a transaction. Firestore
// retries the transaction on contention, so concurrent appends are not lost.
// ArrayUnion is not used because it drops entries equal to existing ones.
func (s *FirestoreStore) appendInTx(ctx context.Context, id, op string, mutate func(*taskDocument) []firestore.Update) error {
	ref := s.doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var d taskDocument
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		return tx.Update(ref, mutate(&d))
	})
	if err != nil {
		return classify(op, id, err)
	}
	return nil
}

func (s *FirestoreStore) SetTrashed(ctx context.Context, id string, trashed bool, at time.Time) error {
	_, err := s.doc(id).Update(ctx, []firestore.Update{
		{Path: "isTrashed", Value: trashed},
		{Path: "updatedat", Value: at},
	})
	if err != nil {
		return classify("set trashed", id, err)
	}
	return nil
}

func (s *FirestoreStore) RestoreTrashed(ctx context.Context, at time.Time) (int, error) {
	return s.eachTrashed(ctx, "restore trashed", func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Update(ref, []firestore.Update{
			{Path: "isTrashed", Value: false},
			{Path: "updatedat", Value: at},
		})
	})
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	// Delete on a missing document succeeds silently; Exists turns that into NotFound.
	if _, err := s.doc(id).Delete(ctx, firestore.Exists); err != nil {
		return classify("delete task", id, err)
	}
	return nil
}

func (s *FirestoreStore) DeleteTrashed(ctx context.Context) (int, error) {
	return s.eachTrashed(ctx, "delete trashed", func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Delete(ref)
	})
}

// eachTrashed enqueues one bulk write per trashed document, waits for all of them
// and reports how many succeeded. Any failed write fails the whole call.
func (s *FirestoreStore) eachTrashed(ctx context.Context, op string, write func(*firestore.BulkWriter, *firestore.DocumentRef) (*firestore.BulkWriterJob, error)) (int, error) {
	iter := s.client.Collection(s.collection).Where("isTrashed", "==", true).Documents(ctx)
	defer iter.Stop()

	bw := s.client.BulkWriter(ctx)
	var jobs []bulkJob
	var queueErr error
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			queueErr = classify(op, "", err)
			break
		}
		job, err := write(bw, snap.Ref)
		if err != nil {
			queueErr = classify(op, snap.Ref.ID, err)
			break
		}
		jobs = append(jobs, job)
	}
	bw.End()

	return collectJobs(op, jobs, queueErr)
}

// bulkJob is the part of firestore.BulkWriterJob collectJobs needs.
type bulkJob interface {
	Results() (*firestore.WriteResult, error)
}

// collectJobs counts the successful jobs. The first failure, or queueErr when set,
// is returned alongside the count.
func collectJobs(op string, jobs []bulkJob, queueErr error) (int, error) {
	count := 0
	failed := 0
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		count++
	}
	if queueErr != nil {
		return count, queueErr
	}
	if firstErr != nil {
		return count, apperr.Unavailable(op, fmt.Errorf("%d of %d writes failed: %w", failed, len(jobs), firstErr))
	}
	return count, nil
}

func decode(snap *firestore.DocumentSnapshot) (*model.Task, error) {
	var d taskDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, apperr.Unavailable("decode task", err)
	}
	if d.TaskID == "" {
		d.TaskID = snap.Ref.ID
	}
	return fromDocument(&d), nil
}

func toDocument(t *model.Task) *taskDocument {
	d := &taskDocument{
		TaskID:    t.ID,
		Title:     t.Title,
		Date:      t.Date,
		Priority:  string(t.Priority),
		Stage:     string(t.Stage),
		IsTrashed: t.IsTrashed,
		Team:      nonNil(t.Team),
		Assets:    nonNil(t.Assets),
		SubTasks:  []subTaskDocument{},
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for _, st := range t.SubTasks {
		d.SubTasks = append(d.SubTasks, subTaskDocument{Title: st.Title, Date: st.Date, Tag: st.Tag})
	}
	d.Activities = []activityDocument{}
	for _, a := range t.Activities.Entries() {
		d.Activities = append(d.Activities, activityDocument{
			Type:     string(a.Type),
			Activity: a.Activity,
			Date:     a.Date,
			By:       a.By,
		})
	}
	return d
}

func fromDocument(d *taskDocument) *model.Task {
	t := &model.Task{
		ID:        d.TaskID,
		Title:     d.Title,
		Date:      d.Date,
		Priority:  model.Priority(d.Priority),
		Stage:     model.Stage(d.Stage),
		IsTrashed: d.IsTrashed,
		Team:      nonNil(d.Team),
		Assets:    nonNil(d.Assets),
		SubTasks:  make([]model.SubTask, 0, len(d.SubTasks)),
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, st := range d.SubTasks {
		t.SubTasks = append(t.SubTasks, model.SubTask{Title: st.Title, Date: st.Date, Tag: st.Tag})
	}
	entries := make([]model.Activity, 0, len(d.Activities))
	for _, a := range d.Activities {
		entries = append(entries, model.Activity{
			Type:     model.ActivityType(a.Type),
			Activity: a.Activity,
			Date:     a.Date,
			By:       a.By,
		})
	}
	t.Activities = model.NewActivityLog(entries...)
	return t
}

// classify maps a Firestore error onto the service error kinds.
func classify(op, id string, err error) error {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	if status.Code(err) == codes.NotFound && id != "" {
		return apperr.NotFound(id)
	}
	return apperr.Unavailable(op, err)
}
