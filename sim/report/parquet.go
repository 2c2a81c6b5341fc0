package report

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim"
)

// CustomerRow is the Parquet schema of a customer record.
// Times not yet reached are stored as +Inf.
type CustomerRow struct {
	ID                int64   `parquet:"name=id, type=INT64"`
	ArrivalTime       float64 `parquet:"name=arrival_time, type=DOUBLE"`
	BoardedTime       float64 `parquet:"name=boarded_time, type=DOUBLE"`
	DepartureTime     float64 `parquet:"name=departure_time, type=DOUBLE"`
	WaitingTime       float64 `parquet:"name=waiting_time, type=DOUBLE"`
	ServiceDuration   float64 `parquet:"name=service_duration, type=DOUBLE"`
	TimeInSystem      float64 `parquet:"name=time_in_system, type=DOUBLE"`
	InSystemAtArrival int64   `parquet:"name=in_system_at_arrival, type=INT64"`
	Status            string  `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// StepRow is the Parquet schema of a step snapshot.
type StepRow struct {
	Step        int64   `parquet:"name=step, type=INT64"`
	Clock       float64 `parquet:"name=clock, type=DOUBLE"`
	Event       string  `parquet:"name=event, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Arrivals    int64   `parquet:"name=arrivals, type=INT64"`
	QueueLength int64   `parquet:"name=queue_length, type=INT64"`
	Served      int64   `parquet:"name=served, type=INT64"`
	IdleServers int64   `parquet:"name=idle_servers, type=INT64"`
}

// WriteCustomersParquet writes customer records to a local Parquet file.
func WriteCustomersParquet(path string, records []sim.CustomerRecord) error {
	rows := make([]any, len(records))
	for i, r := range records {
		rows[i] = CustomerRow{
			ID:                int64(r.ID),
			ArrivalTime:       r.ArrivalTime,
			BoardedTime:       r.BoardedTime,
			DepartureTime:     r.DepartureTime,
			WaitingTime:       r.WaitingTime,
			ServiceDuration:   r.ServiceDuration,
			TimeInSystem:      r.TimeInSystem,
			InSystemAtArrival: int64(r.InSystemAtArrival),
			Status:            string(r.Status),
		}
	}
	return writeParquet(path, new(CustomerRow), rows)
}

// WriteStepsParquet writes step snapshots to a local Parquet file.
func WriteStepsParquet(path string, steps []sim.StepSnapshot) error {
	rows := make([]any, len(steps))
	for i, s := range steps {
		rows[i] = StepRow{
			Step:        int64(s.Step),
			Clock:       s.Clock,
			Event:       s.Event.String(),
			Arrivals:    int64(s.Arrivals),
			QueueLength: int64(s.QueueLength),
			Served:      int64(s.Served),
			IdleServers: int64(s.IdleServers),
		}
	}
	return writeParquet(path, new(StepRow), rows)
}

func writeParquet(path string, schema any, rows []any) (err error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create local file writer: %w", err)
	}
	defer func() {
		if closeErr := fw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	return nil
}
