package mediaio

import (
	"context"
	"io"
	"sync"
	"time"
)

// mockBackend is a scripted MediaBackend. Upload and job states are
// returned in order; the last entry repeats once the script runs out.
type mockBackend struct {
	mu sync.Mutex

	text    string
	textErr error
	textReq []TextRequest

	uploadState   []UploadState // first entry is the state returned by UploadBlob
	uploadErr     error
	uploadNil     bool // UploadBlob returns (nil, nil)
	uploadedBytes [][]byte
	stagingPaths  []string
	statusCalls   int

	batch      []Blob
	batchErr   error
	batchReq   []ImageBatchRequest
	inline     *Blob
	inlineErr  error
	inlineReq  []ImageInlineRequest
	videoReq   []VideoRequest
	submitErr  error
	jobStates  []JobStatus
	jobFailure string
	pollErr    error
	artifact   *Blob
	fetchErr   error

	calls  []string
	closed int
}

func (m *mockBackend) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockBackend) UploadBlob(ctx context.Context, r io.Reader, size int64, mimeType string) (*UploadHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("upload")
	if f, ok := r.(interface{ Name() string }); ok {
		m.stagingPaths = append(m.stagingPaths, f.Name())
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.uploadedBytes = append(m.uploadedBytes, data)
	if m.uploadErr != nil || m.uploadNil {
		return nil, m.uploadErr
	}
	state := UploadReady
	if len(m.uploadState) > 0 {
		state = m.uploadState[0]
	}
	return &UploadHandle{Name: "files/abc", URI: "https://files.example/abc", State: state}, nil
}

func (m *mockBackend) UploadStatus(ctx context.Context, h UploadHandle) (UploadState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("upload_status")
	m.statusCalls++
	idx := m.statusCalls
	if idx >= len(m.uploadState) {
		idx = len(m.uploadState) - 1
	}
	if idx < 0 {
		return UploadReady, nil
	}
	return m.uploadState[idx], nil
}

func (m *mockBackend) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("text")
	m.textReq = append(m.textReq, req)
	return m.text, m.textErr
}

func (m *mockBackend) GenerateImagesBatch(ctx context.Context, req ImageBatchRequest) ([]Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("batch")
	m.batchReq = append(m.batchReq, req)
	return m.batch, m.batchErr
}

func (m *mockBackend) GenerateImageInline(ctx context.Context, req ImageInlineRequest) (*Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("inline")
	m.inlineReq = append(m.inlineReq, req)
	return m.inline, m.inlineErr
}

func (m *mockBackend) SubmitVideoJob(ctx context.Context, req VideoRequest) (JobHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("submit")
	m.videoReq = append(m.videoReq, req)
	if m.submitErr != nil {
		return JobHandle{}, m.submitErr
	}
	return JobHandle{Name: "operations/video-1"}, nil
}

func (m *mockBackend) PollJob(ctx context.Context, h JobHandle) (JobPoll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("poll")
	if m.pollErr != nil {
		return JobPoll{}, m.pollErr
	}
	polls := m.count("poll") - 1
	status := JobDone
	if len(m.jobStates) > 0 {
		if polls >= len(m.jobStates) {
			polls = len(m.jobStates) - 1
		}
		status = m.jobStates[polls]
	}
	res := JobPoll{Handle: h, Status: status}
	if status == JobFailed {
		res.Failure = m.jobFailure
	}
	return res, nil
}

func (m *mockBackend) FetchJobArtifact(ctx context.Context, h JobHandle) (*Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("fetch")
	return m.artifact, m.fetchErr
}

func (m *mockBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *mockBackend) count(call string) int {
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *mockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// recordingSleeper returns immediately and remembers each requested wait.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
	err   error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return s.err
}

func (s *recordingSleeper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waits)
}
