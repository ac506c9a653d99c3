// Package apiclient reads course data from the upstream REST data access
// layer. It is read-only: every write returns core.ErrReadOnly.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"cuotas/internal/cache"
	"cuotas/internal/core"
	"cuotas/internal/ports"
)

var (
	// ErrUpstream wraps unexpected non-2xx responses.
	ErrUpstream = errors.New("upstream API error")

	_ ports.LedgerReader = (*Client)(nil)
	_ ports.LedgerWriter = (*Client)(nil)
)

type Options struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *slog.Logger
	// CacheTTL, when positive, keeps course, goal and category responses
	// for that long. Payments, expenses and students are always fetched.
	CacheTTL  time.Duration
	CacheSize int
	// HTTPClient overrides the underlying transport, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *retryablehttp.Client
	logger  *slog.Logger
	cache   *cache.LRU[[]byte]
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		rc.HTTPClient = opts.HTTPClient
	}
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	rc.RetryMax = opts.MaxRetries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.Logger = &retryLogger{logger: logger}
	// hand the final response back so status mapping happens in one place
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{baseURL: base.String(), http: rc, logger: logger}
	if opts.CacheTTL > 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = 256
		}
		c.cache = cache.NewLRU[[]byte](size, opts.CacheTTL)
	}
	return c, nil
}

// cacheable lists the slow-changing resources.
func cacheable(path string) bool {
	return strings.HasPrefix(path, "/courses") || strings.HasPrefix(path, "/config")
}

// get decodes the JSON body of GET baseURL+path into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	useCache := c.cache != nil && cacheable(path)
	if useCache {
		if body, ok := c.cache.Get(u); ok {
			return json.Unmarshal(body, out)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Upstream API call",
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, core.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: %w: status %d: %s", path, ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if useCache {
		c.cache.Set(u, body)
	}
	return nil
}

func courseQuery(course core.CourseID) url.Values {
	return url.Values{"course_id": []string{course.String()}}
}

// Ping checks that the upstream answers the course listing.
func (c *Client) Ping(ctx context.Context) error {
	var courses []core.Course
	return c.get(ctx, "/courses", nil, &courses)
}

func (c *Client) ListCourses(ctx context.Context, activeOnly bool) ([]core.Course, error) {
	path := "/courses"
	if activeOnly {
		path = "/courses/active"
	}
	var courses []core.Course
	if err := c.get(ctx, path, nil, &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []core.Course{}
	}
	if activeOnly {
		for i := range courses {
			courses[i].Active = true
		}
	}
	return courses, nil
}

func (c *Client) GetCourse(ctx context.Context, id core.CourseID) (core.Course, error) {
	var course core.Course
	if err := c.get(ctx, "/courses/"+id.String(), nil, &course); err != nil {
		return core.Course{}, err
	}
	if course.ID == 0 {
		course.ID = id
	}
	return course, nil
}

func (c *Client) ListStudents(ctx context.Context, course core.CourseID) ([]core.Student, error) {
	var students []core.Student
	if err := c.get(ctx, "/students", courseQuery(course), &students); err != nil {
		return nil, err
	}
	out := make([]core.Student, 0, len(students))
	for _, s := range students {
		if s.CourseID == 0 {
			s.CourseID = course
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Client) ListPayments(ctx context.Context, course core.CourseID) ([]core.Payment, error) {
	var payments []core.Payment
	if err := c.get(ctx, "/payments", courseQuery(course), &payments); err != nil {
		return nil, err
	}
	out := make([]core.Payment, 0, len(payments))
	for _, p := range payments {
		if p.CourseID == 0 {
			p.CourseID = course
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) ListExpenses(ctx context.Context, course core.CourseID) ([]core.Expense, error) {
	var expenses []core.Expense
	if err := c.get(ctx, "/expenses", courseQuery(course), &expenses); err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.CourseID == 0 {
			e.CourseID = course
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context, course core.CourseID) ([]core.Category, error) {
	var categories []core.Category
	if err := c.get(ctx, "/config/categories", courseQuery(course), &categories); err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.CourseID == 0 {
			cat.CourseID = course
		}
		out = append(out, cat)
	}
	return out, nil
}

// GetGoalConfig treats a 404 or an empty object as "no goal configured".
func (c *Client) GetGoalConfig(ctx context.Context, course core.CourseID) (*core.GoalConfig, error) {
	var g core.GoalConfig
	err := c.get(ctx, "/config", courseQuery(course), &g)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if g.TotalGoal == "" && g.TotalSpentGoal == "" {
		return nil, nil
	}
	g.CourseID = course
	return &g, nil
}

// retryLogger adapts slog to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger *slog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
