package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/rs/zerolog"

	"BoltWatch.dashboard/internal/models"
)

const (
	boltMeasurement = "bolt"
	diffMeasurement = "diff"
)

// InfluxDBRepository reads floor data straight from InfluxDB. Bolt points
// carry tags floor and num with fields distance and temperature. Diff
// points carry tag floor with fields num, ref, las and diff.
type InfluxDBRepository struct {
	client influxdb2.Client
	org    string
	bucket string
	log    zerolog.Logger
}

// NewInfluxDBRepository creates a new InfluxDBRepository.
func NewInfluxDBRepository(url, token, org, bucket string, log zerolog.Logger) *InfluxDBRepository {
	return &InfluxDBRepository{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
		log:    log,
	}
}

// Ping checks the server health and that the bucket exists.
func (r *InfluxDBRepository) Ping(ctx context.Context) error {
	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	if _, err := r.client.BucketsAPI().FindBucketByName(ctx, r.bucket); err != nil {
		return fmt.Errorf("bucket %q: %w", r.bucket, err)
	}
	return nil
}

// Close releases the client's resources.
func (r *InfluxDBRepository) Close() {
	r.client.Close()
}

// FetchReadings queries the bolt measurement for the floor.
func (r *InfluxDBRepository) FetchReadings(ctx context.Context, floor int) ([]models.Reading, error) {
	rows, err := r.query(ctx, boltQuery(r.bucket, floor))
	if err != nil {
		return nil, err
	}
	readings := make([]models.Reading, 0, len(rows))
	for _, values := range rows {
		reading, err := readingFromValues(values)
		if err != nil {
			r.log.Warn().Err(err).Int("floor", floor).Msg("skipping bolt row")
			continue
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// FetchDiffs queries the diff measurement for the floor, ordered by num.
func (r *InfluxDBRepository) FetchDiffs(ctx context.Context, floor int) ([]models.DiffRecord, error) {
	rows, err := r.query(ctx, diffQuery(r.bucket, floor))
	if err != nil {
		return nil, err
	}
	diffs := make([]models.DiffRecord, 0, len(rows))
	for _, values := range rows {
		rec, err := diffFromValues(values)
		if err != nil {
			r.log.Warn().Err(err).Int("floor", floor).Msg("skipping diff row")
			continue
		}
		diffs = append(diffs, rec)
	}
	// Pivoted tables come back grouped, so order is restored here.
	sort.SliceStable(diffs, func(i, j int) bool { return diffs[i].Num < diffs[j].Num })
	return diffs, nil
}

func (r *InfluxDBRepository) query(ctx context.Context, flux string) ([]map[string]interface{}, error) {
	r.log.Debug().Str("query", flux).Msg("executing InfluxDB query")
	result, err := r.client.QueryAPI(r.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	var rows []map[string]interface{}
	for result.Next() {
		rows = append(rows, result.Record().Values())
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query error: %w", result.Err())
	}
	return rows, nil
}

func boltQuery(bucket string, floor int) string {
	return fmt.Sprintf(`
		from(bucket: %q)
		|> range(start: 0)
		|> filter(fn: (r) => r["_measurement"] == %q)
		|> filter(fn: (r) => r["floor"] == "%d")
		|> filter(fn: (r) => r["_field"] == "distance" or r["_field"] == "temperature")
		|> pivot(rowKey: ["_time", "num"], columnKey: ["_field"], valueColumn: "_value")
	`, bucket, boltMeasurement, floor)
}

func diffQuery(bucket string, floor int) string {
	return fmt.Sprintf(`
		from(bucket: %q)
		|> range(start: 0)
		|> filter(fn: (r) => r["_measurement"] == %q)
		|> filter(fn: (r) => r["floor"] == "%d")
		|> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
		|> group()
		|> sort(columns: ["num"])
	`, bucket, diffMeasurement, floor)
}

func readingFromValues(values map[string]interface{}) (models.Reading, error) {
	num, err := intValue(values, "num")
	if err != nil {
		return models.Reading{}, err
	}
	reading := models.Reading{Num: num}
	if reading.Distance, err = floatValue(values, "distance"); err != nil {
		return models.Reading{}, err
	}
	if reading.Temperature, err = floatValue(values, "temperature"); err != nil {
		return models.Reading{}, err
	}
	if ts, ok := values["_time"].(time.Time); ok {
		reading.Date = ts.UnixMilli()
	}
	return reading, nil
}

func diffFromValues(values map[string]interface{}) (models.DiffRecord, error) {
	num, err := intValue(values, "num")
	if err != nil {
		return models.DiffRecord{}, err
	}
	rec := models.DiffRecord{Num: num}
	if rec.Ref, err = floatValue(values, "ref"); err != nil {
		return models.DiffRecord{}, err
	}
	if rec.Las, err = floatValue(values, "las"); err != nil {
		return models.DiffRecord{}, err
	}
	if rec.Diff, err = floatValue(values, "diff"); err != nil {
		return models.DiffRecord{}, err
	}
	return rec, nil
}

// intValue accepts tags (strings) as well as integer or float fields.
func intValue(values map[string]interface{}, key string) (int, error) {
	switch v := values[key].(type) {
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", key, err)
		}
		return n, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case nil:
		return 0, fmt.Errorf("column %s missing", key)
	default:
		return 0, fmt.Errorf("column %s has unsupported type %T", key, v)
	}
}

func floatValue(values map[string]interface{}, key string) (float64, error) {
	switch v := values[key].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case nil:
		return 0, fmt.Errorf("column %s missing", key)
	default:
		return 0, fmt.Errorf("column %s has unsupported type %T", key, v)
	}
}
