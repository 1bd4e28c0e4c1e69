package maconomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/session"
)

const (
	contentTypeJSON   = "application/vnd.deltek.maconomy.containers+json"
	contentTypeJSONV5 = "application/vnd.deltek.maconomy.containers+json; version=5.0"

	// ConcurrencyControlHeader carries the single-writer token of an instance
	ConcurrencyControlHeader = "Maconomy-Concurrency-Control"

	userAgent = "Maconomy CLI"
)

// Sender sends a request with authentication applied
type Sender interface {
	Send(ctx context.Context, req session.Request) (*session.Response, error)
}

// ContainerInstance is one server-side edit session. ConcurrencyControl must
// be replaced with the token of every response before the next request.
type ContainerInstance struct {
	ID                 string
	ConcurrencyControl string
}

// Client speaks the timeregistration container protocol. It keeps no state;
// callers thread the concurrency control token between calls.
type Client struct {
	sender  Sender
	baseURL string
}

func New(sender Sender, maconomyURL, companyID string) *Client {
	return &Client{
		sender:  sender,
		baseURL: fmt.Sprintf("%s/containers/%s/timeregistration", strings.TrimRight(maconomyURL, "/"), companyID),
	}
}

func (c *Client) instanceURL(instance ContainerInstance) string {
	return c.baseURL + "/instances/" + instance.ID
}

// AcquireInstance opens a new container instance
func (c *Client) AcquireInstance(ctx context.Context) (ContainerInstance, error) {
	body, err := json.Marshal(instanceFields)
	if err != nil {
		return ContainerInstance{}, goerr.Wrap(err, "failed to encode instance fields")
	}

	resp, err := c.send(ctx, http.MethodPost, c.baseURL+"/instances", "", contentTypeJSON, body)
	if err != nil {
		return ContainerInstance{}, goerr.Wrap(err, "failed to acquire container instance")
	}

	token, err := concurrencyControl(resp)
	if err != nil {
		return ContainerInstance{}, err
	}

	var doc Document
	if err := decode(resp.Body, &doc); err != nil {
		return ContainerInstance{}, err
	}
	if doc.Meta.ContainerInstanceID == "" {
		return ContainerInstance{}, goerr.New("response contains no container instance id", goerr.T(ErrTagInvalidResponse))
	}

	ctxlog.From(ctx).Debug("Acquired container instance", "id", doc.Meta.ContainerInstanceID)

	return ContainerInstance{ID: doc.Meta.ContainerInstanceID, ConcurrencyControl: token}, nil
}

// Fetch returns the current data of the instance
func (c *Client) Fetch(ctx context.Context, instance ContainerInstance) (*Document, string, error) {
	return c.document(ctx, http.MethodPost, c.instanceURL(instance)+"/data;any", instance, "", nil)
}

// AdvanceToWeek moves the instance to the week containing date
func (c *Client) AdvanceToWeek(ctx context.Context, instance ContainerInstance, date time.Time) (*Document, string, error) {
	body, err := json.Marshal(map[string]any{
		"data": map[string]string{"datevar": date.Format(time.DateOnly)},
	})
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to encode week")
	}

	doc, token, err := c.document(ctx, http.MethodPost, c.instanceURL(instance)+"/data/panes/card/0", instance, contentTypeJSONV5, body)
	if err != nil {
		return nil, token, goerr.Wrap(err, "failed to advance to week", goerr.V("date", date.Format(time.DateOnly)))
	}
	return doc, token, nil
}

// CreateTimeSheet initializes the time sheet of the current week
func (c *Client) CreateTimeSheet(ctx context.Context, instance ContainerInstance) (*Document, string, error) {
	doc, token, err := c.document(ctx, http.MethodPost,
		c.instanceURL(instance)+"/data/panes/card/0/action;name=createtimesheet", instance, contentTypeJSONV5, nil)
	if err != nil {
		return nil, token, goerr.Wrap(err, "failed to create time sheet")
	}
	return doc, token, nil
}

// SetFields writes values into one table row in a single request
func (c *Client) SetFields(ctx context.Context, instance ContainerInstance, row int, fields map[string]any) (string, error) {
	body, err := json.Marshal(map[string]any{"data": fields})
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode fields")
	}

	resp, err := c.send(ctx, http.MethodPost, fmt.Sprintf("%s/data/panes/table/%d", c.instanceURL(instance), row),
		instance.ConcurrencyControl, contentTypeJSON, body)
	if err != nil {
		return tokenOf(err), goerr.Wrap(err, "failed to set fields", goerr.V("row", row), goerr.V("fields", sortedKeys(fields)))
	}
	return concurrencyControl(resp)
}

// CreateRow appends a row for the job and short task name. It returns
// *UninitializedWeekError when the week has no time sheet yet.
func (c *Client) CreateRow(ctx context.Context, instance ContainerInstance, jobNumber, taskName string) (*Document, string, error) {
	body, err := json.Marshal(map[string]any{
		"data": map[string]string{
			"jobnumber": jobNumber,
			"taskname":  taskName,
		},
	})
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to encode row")
	}

	doc, token, err := c.document(ctx, http.MethodPost, c.instanceURL(instance)+"/data/panes/table/?row=end",
		instance, contentTypeJSONV5, body)
	if err != nil {
		var uninitialized *UninitializedWeekError
		if errors.As(err, &uninitialized) {
			return nil, token, err
		}
		return nil, token, goerr.Wrap(err, "failed to create row", goerr.V("job_number", jobNumber), goerr.V("task", taskName))
	}
	return doc, token, nil
}

// DeleteRow removes the row at the 0-based index
func (c *Client) DeleteRow(ctx context.Context, instance ContainerInstance, row int) (*Document, string, error) {
	doc, token, err := c.document(ctx, http.MethodDelete, fmt.Sprintf("%s/data/panes/table/%d", c.instanceURL(instance), row),
		instance, contentTypeJSONV5, nil)
	if err != nil {
		return nil, token, goerr.Wrap(err, "failed to delete row", goerr.V("row", row))
	}
	return doc, token, nil
}

// Submit submits the time sheet of the current week
func (c *Client) Submit(ctx context.Context, instance ContainerInstance) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, c.instanceURL(instance)+"/data/panes/card/0/action;name=submittimesheet",
		instance.ConcurrencyControl, contentTypeJSONV5, nil)
	if err != nil {
		return tokenOf(err), goerr.Wrap(err, "failed to submit time sheet")
	}
	return concurrencyControl(resp)
}

// SearchJob returns the number of the first job whose customer number, job
// number, job name or customer name contains name.
func (c *Client) SearchJob(ctx context.Context, name string) (string, bool, error) {
	pattern := strings.ReplaceAll(name, "'", "''")
	restriction := fmt.Sprintf(
		"(customernumber like '*%[1]s*' or jobnumber like '*%[1]s*' or jobname like '*%[1]s*' or name1 like '*%[1]s*')",
		pattern)

	body, err := json.Marshal(map[string]any{
		"restriction": restriction,
		"fields":      []string{"jobnumber"},
	})
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to encode job search")
	}

	resp, err := c.send(ctx, http.MethodPost, c.baseURL+"/search/table;foreignkey=notblockedjobnumber_jobheader",
		"", contentTypeJSON, body)
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to search for job", goerr.V("job", name))
	}

	var result SearchResponse[JobRecord]
	if err := decode(resp.Body, &result); err != nil {
		return "", false, err
	}
	if len(result.Panes.Filter.Records) == 0 {
		return "", false, nil
	}
	return result.Panes.Filter.Records[0].Data.JobNumber, true, nil
}

// SearchTasks lists the tasks that can be registered on a job
func (c *Client) SearchTasks(ctx context.Context, jobNumber string) ([]Task, error) {
	body, err := json.Marshal(map[string]any{
		"data":   map[string]string{"jobnumber": jobNumber},
		"fields": []string{"taskname", "description"},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode task search")
	}

	resp, err := c.send(ctx, http.MethodPost, c.baseURL+"/search/table;foreignkey=taskname_tasklistline",
		"", contentTypeJSON, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search for tasks", goerr.V("job_number", jobNumber))
	}

	var result SearchResponse[Task]
	if err := decode(resp.Body, &result); err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(result.Panes.Filter.Records))
	for _, record := range result.Panes.Filter.Records {
		tasks = append(tasks, record.Data)
	}
	return tasks, nil
}

// FindShortTaskName maps a long task name to the short name, ignoring case
func FindShortTaskName(tasks []Task, longName string) (string, bool) {
	for _, task := range tasks {
		if strings.EqualFold(task.Description, longName) {
			return task.Name, true
		}
	}
	return "", false
}

// document sends a stateful request and decodes the returned document. The
// token is returned even when the request fails, as long as the server sent one.
func (c *Client) document(ctx context.Context, method, url string, instance ContainerInstance, contentType string, body []byte) (*Document, string, error) {
	resp, err := c.send(ctx, method, url, instance.ConcurrencyControl, contentType, body)
	if err != nil {
		return nil, tokenOf(err), err
	}

	token, err := concurrencyControl(resp)
	if err != nil {
		return nil, "", err
	}

	var doc Document
	if err := decode(resp.Body, &doc); err != nil {
		return nil, token, err
	}
	return &doc, token, nil
}

func (c *Client) send(ctx context.Context, method, url, token, contentType string, body []byte) (*session.Response, error) {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Accept", contentTypeJSONV5)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	if token != "" {
		header.Set(ConcurrencyControlHeader, token)
	}

	resp, err := c.sender.Send(ctx, session.Request{Method: method, URL: url, Header: header, Body: body})
	if err != nil {
		var httpErr *session.HTTPError
		if errors.As(err, &httpErr) && isUninitializedWeek(httpErr.Body) {
			ctxlog.From(ctx).Info("Week has not been initialized", "url", url)
			return nil, &UninitializedWeekError{ConcurrencyControl: httpErr.Header.Get(ConcurrencyControlHeader)}
		}
		return nil, err
	}

	ctxlog.From(ctx).Debug("Concurrency control rotated",
		"url", url,
		"sent", token,
		"received", resp.Header.Get(ConcurrencyControlHeader),
	)
	return resp, nil
}

// tokenOf extracts a rotated token from a failed request, if the server sent one
func tokenOf(err error) string {
	var uninitialized *UninitializedWeekError
	if errors.As(err, &uninitialized) {
		return uninitialized.ConcurrencyControl
	}
	var httpErr *session.HTTPError
	if errors.As(err, &httpErr) && httpErr.Header != nil {
		return httpErr.Header.Get(ConcurrencyControlHeader)
	}
	return ""
}

func concurrencyControl(resp *session.Response) (string, error) {
	token := resp.Header.Get(ConcurrencyControlHeader)
	if token == "" {
		return "", goerr.New("failed to extract concurrency control from headers", goerr.T(ErrTagMissingToken))
	}
	return token, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(err, "failed to parse response", goerr.T(ErrTagInvalidResponse), goerr.V("body", truncate(body, 512)))
	}
	return nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
