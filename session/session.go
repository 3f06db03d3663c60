// Package session executes cassandra statements on a cluster through gocql.
package session

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cassandra-go/cassandra"
)

var errPrepared = errors.New("prepared")

// Session implements cassandra.Executor.
type Session struct {
	cfg     Config
	logger  log.Logger
	session *gocql.Session
}

var _ cassandra.Executor = (*Session)(nil)

// New connects to the cluster described by cfg.
func New(cfg Config, logger log.Logger, reg prometheus.Registerer) (*Session, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	cluster, err := cfg.cluster()
	if err != nil {
		return nil, err
	}
	cluster.QueryObserver = observer{m: newMetrics(reg)}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", cfg)
	}
	level.Info(logger).Log("msg", "connected to cassandra", "addresses", cfg.Addresses, "keyspace", cfg.Keyspace)

	return &Session{
		cfg:     cfg,
		logger:  logger,
		session: session,
	}, nil
}

func (s *Session) Close() {
	s.session.Close()
}

// Prepare prepares query on the cluster and returns its metadata as a
// PreparedStatement. The caller owns the result and must close it. Only
// SELECT, INSERT, UPDATE, DELETE and BATCH statements can be prepared; any
// other query fails without reaching the cluster.
func (s *Session) Prepare(ctx context.Context, query string) (*cassandra.PreparedStatement, error) {
	if !preparable(query) {
		return nil, errors.Errorf("prepare %q: only SELECT, INSERT, UPDATE, DELETE and BATCH statements can be prepared", query)
	}

	var info *gocql.QueryInfo
	capture := func(qi *gocql.QueryInfo) ([]interface{}, error) {
		info = qi
		return nil, errPrepared
	}

	// The binding callback runs after the driver has prepared the query;
	// aborting it there yields the metadata without executing anything.
	err := s.session.Bind(query, capture).WithContext(ctx).RetryPolicy(nil).Exec()
	if info == nil {
		if err == nil {
			err = errors.New("no prepare metadata returned")
		}
		level.Warn(s.logger).Log("msg", "prepare failed", "query", query, "err", err)
		return nil, errors.Wrapf(err, "prepare %q", query)
	}

	return cassandra.NewPreparedStatement(preparedMetadata(query, s.cfg.Keyspace, info))
}

// preparable reports whether gocql prepares query before running it. For any
// other statement the driver skips the binding callback and executes the
// query directly.
func preparable(query string) bool {
	stmt := strings.TrimLeftFunc(strings.TrimRightFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || r == ';'
	}), unicode.IsSpace)

	var verb string
	if n := strings.IndexFunc(stmt, unicode.IsSpace); n >= 0 {
		verb = strings.ToLower(stmt[:n])
	}
	if verb == "begin" {
		if n := strings.LastIndexFunc(stmt, unicode.IsSpace); n >= 0 {
			verb = strings.ToLower(stmt[n+1:])
		}
	}
	switch verb {
	case "select", "insert", "update", "delete", "batch":
		return true
	}
	return false
}

func preparedMetadata(query, keyspace string, info *gocql.QueryInfo) cassandra.PreparedMetadata {
	md := cassandra.PreparedMetadata{
		Query:        query,
		ID:           info.Id,
		Keyspace:     keyspace,
		PartitionKey: info.PKeyColumns,
	}
	for _, col := range info.Args {
		md.Parameters = append(md.Parameters, cassandra.ParameterInfo{
			Name:     col.Name,
			Keyspace: col.Keyspace,
			Table:    col.Table,
			Type:     col.TypeInfo,
		})
	}
	if len(info.Args) > 0 && info.Args[0].Keyspace != "" {
		md.Keyspace = info.Args[0].Keyspace
	}
	return md
}

// Execute snapshots stmt and runs it asynchronously. stmt may be rebound or
// closed as soon as Execute returns.
func (s *Session) Execute(ctx context.Context, stmt *cassandra.Statement) *cassandra.Future {
	req, err := stmt.Request()
	if err != nil {
		return cassandra.FailedFuture(err)
	}
	return cassandra.NewFuture(ctx, func(ctx context.Context) (cassandra.Result, error) {
		res, err := s.execute(ctx, req)
		if err != nil {
			level.Debug(s.logger).Log("msg", "request failed", "query", req.Query, "err", err)
		}
		return res, err
	})
}

func (s *Session) execute(ctx context.Context, req cassandra.Request) (cassandra.Result, error) {
	q := s.query(ctx, req)
	iter := q.Iter()
	rows, err := iter.SliceMap()
	pageState := iter.PageState()
	if closeErr := iter.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, errors.Wrapf(err, "execute %q", req.Query)
	}
	return &Page{Rows: rows, pagingState: append([]byte(nil), pageState...)}, nil
}

func (s *Session) query(ctx context.Context, req cassandra.Request) *gocql.Query {
	q := s.session.Query(req.Query, queryArgs(req)...).WithContext(ctx)
	if req.HasConsistency {
		q = q.Consistency(gocql.Consistency(req.Consistency))
	}
	if req.HasSerialConsistency {
		q = q.SerialConsistency(gocql.SerialConsistency(req.SerialConsistency))
	}
	if req.PageSize > 0 {
		q = q.PageSize(req.PageSize)
	} else {
		q = q.PageSize(0)
	}
	if len(req.PagingState) > 0 {
		q = q.PageState(req.PagingState)
	}
	if req.HasTimestamp {
		q = q.WithTimestamp(req.Timestamp)
	}
	if req.RetryPolicy != nil {
		q = q.RetryPolicy(req.RetryPolicy)
	}
	if req.CustomPayload != nil {
		q = q.CustomPayload(req.CustomPayload)
	}
	if key := req.RoutingKey(); key != nil {
		q = q.RoutingKey(key)
	}
	return q
}

// rawValue passes pre-encoded bytes through gocql unchanged.
type rawValue []byte

func (v rawValue) MarshalCQL(gocql.TypeInfo) ([]byte, error) {
	return v, nil
}

func queryArgs(req cassandra.Request) []interface{} {
	args := make([]interface{}, len(req.Values))
	for i, v := range req.Values {
		if !v.Bound {
			args[i] = gocql.UnsetValue
			continue
		}
		args[i] = rawValue(v.Data)
	}
	return args
}

// Page is one page of rows returned by Execute.
type Page struct {
	Rows        []map[string]interface{}
	pagingState []byte
}

var _ cassandra.Result = (*Page)(nil)

func (p *Page) PagingState() []byte {
	return p.pagingState
}

// FirstRow returns the first row, or nil if the page is empty.
func (p *Page) FirstRow() map[string]interface{} {
	if len(p.Rows) == 0 {
		return nil
	}
	return p.Rows[0]
}
