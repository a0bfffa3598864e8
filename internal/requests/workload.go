package requests

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseWorkload reads the text workload format: one process per line,
// "pid, arrival, priority, burst1, burst2, ...". A trailing separator is
// allowed and blank lines are skipped. Any bad line rejects the whole
// workload; dropping a process would change the averages.
func ParseWorkload(r io.Reader) (*ScheduleRequests, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	request := &ScheduleRequests{Jobs: make([]Job, 0)}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		line, _ := reader.FieldPos(0)

		job, err := parseJob(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		request.Jobs = append(request.Jobs, job)
	}

	if err := request.Validate(); err != nil {
		return nil, err
	}
	return request, nil
}

func parseJob(fields []string) (Job, error) {
	if n := len(fields); n > 0 && strings.TrimSpace(fields[n-1]) == "" {
		fields = fields[:n-1]
	}
	if len(fields) < 4 {
		return Job{}, fmt.Errorf("%w: want pid, arrival, priority and at least one burst, got %d fields",
			ErrMalformedRecord, len(fields))
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Job{}, fmt.Errorf("%w: field %d %q is not an integer", ErrMalformedRecord, i+1, f)
		}
		values[i] = v
	}

	return Job{
		ProcessId:   values[0],
		ArrivalTime: values[1],
		Priority:    values[2],
		Bursts:      values[3:],
	}, nil
}

// WriteWorkload encodes jobs in the format ParseWorkload reads.
func WriteWorkload(w io.Writer, jobs []Job) error {
	bw := bufio.NewWriter(w)
	for i, j := range jobs {
		fields := make([]string, 0, 3+len(j.Bursts))
		fields = append(fields,
			strconv.Itoa(j.ProcessId),
			strconv.Itoa(j.ArrivalTime),
			strconv.Itoa(j.Priority))
		for _, b := range j.Bursts {
			fields = append(fields, strconv.Itoa(b))
		}
		if _, err := bw.WriteString(strings.Join(fields, ", ")); err != nil {
			return err
		}
		if i < len(jobs)-1 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
