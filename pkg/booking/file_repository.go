package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// bookingDocument is the on-disk shape of the file store: the whole
// collection in one JSON object, plus the monotonic id counter persisted
// alongside it so ids survive cancellations and restarts.
type bookingDocument struct {
	Bookings []Booking `json:"bookings"`
	NextID   int       `json:"next_id"`
}

// FileRepository keeps the entire booking collection in a single JSON file.
// Every operation reloads the document from disk; writes replace the file
// atomically (write to a temp file, then rename) so a crash mid-write can
// never leave a truncated collection behind.
type FileRepository struct {
	path string
	mu   sync.RWMutex
}

// NewFileRepository opens the store at path, creating an empty document if
// the file does not exist yet. An unreadable or corrupt existing file is an
// error, never an empty collection.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.save(bookingDocument{Bookings: []Booking{}, NextID: 1}); err != nil {
			return nil, err
		}
		log.Infof("Created new booking store at %s", path)
		return r, nil
	}
	if _, err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepository) Store(ctx context.Context, b Booking) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return Booking{}, err
	}
	b.ID = FormatBookingID(doc.NextID)
	doc.NextID++
	doc.Bookings = append(doc.Bookings, b)
	if err := r.save(doc); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, b := range doc.Bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *FileRepository) FindActiveForEquipmentAndDate(ctx context.Context, equipmentID, date string) ([]Booking, error) {
	return r.filterActive(func(b Booking) bool {
		return b.EquipmentID == equipmentID && b.Date == date
	})
}

func (r *FileRepository) FindActiveForDate(ctx context.Context, date string) ([]Booking, error) {
	return r.filterActive(func(b Booking) bool {
		return b.Date == date
	})
}

func (r *FileRepository) FindActiveForDateRange(ctx context.Context, fromDate, toDateExclusive string) ([]Booking, error) {
	// ISO dates compare correctly as strings.
	return r.filterActive(func(b Booking) bool {
		return b.Date >= fromDate && b.Date < toDateExclusive
	})
}

func (r *FileRepository) FindActiveForUser(ctx context.Context, userEmail string) ([]Booking, error) {
	return r.filterActive(func(b Booking) bool {
		return b.UserEmail == userEmail
	})
}

func (r *FileRepository) FindAll(ctx context.Context, includeCancelled bool) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if includeCancelled {
		return doc.Bookings, nil
	}
	active := make([]Booking, 0, len(doc.Bookings))
	for _, b := range doc.Bookings {
		if !b.IsCancelled() {
			active = append(active, b)
		}
	}
	return active, nil
}

func (r *FileRepository) Cancel(ctx context.Context, id string, cancelledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}
	for i := range doc.Bookings {
		if doc.Bookings[i].ID == id {
			doc.Bookings[i].Status = StatusCancelled
			t := cancelledAt
			doc.Bookings[i].CancelledAt = &t
			if err := r.save(doc); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (r *FileRepository) filterActive(keep func(Booking) bool) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	matched := make([]Booking, 0)
	for _, b := range doc.Bookings {
		if !b.IsCancelled() && keep(b) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (r *FileRepository) load() (bookingDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		err = fmt.Errorf("%w: could not read %s: %v", ErrStorage, r.path, err)
		log.Error(err)
		return bookingDocument{}, err
	}
	var doc bookingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		err = fmt.Errorf("%w: corrupt booking store %s: %v", ErrStorage, r.path, err)
		log.Error(err)
		return bookingDocument{}, err
	}
	if doc.Bookings == nil {
		doc.Bookings = []Booking{}
	}
	if doc.NextID == 0 {
		// Document written before the counter existed: resume after the
		// highest id already issued, counting cancelled records too.
		doc.NextID = highestIssuedID(doc.Bookings) + 1
	}
	return doc, nil
}

func (r *FileRepository) save(doc bookingDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		err = fmt.Errorf("%w: could not encode booking store: %v", ErrStorage, err)
		log.Error(err)
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		err = fmt.Errorf("%w: could not create temp file: %v", ErrStorage, err)
		log.Error(err)
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		err = fmt.Errorf("%w: could not write %s: %v", ErrStorage, tmpName, err)
		log.Error(err)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		err = fmt.Errorf("%w: could not close %s: %v", ErrStorage, tmpName, err)
		log.Error(err)
		return err
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		err = fmt.Errorf("%w: could not replace %s: %v", ErrStorage, r.path, err)
		log.Error(err)
		return err
	}
	return nil
}

func highestIssuedID(bookings []Booking) int {
	highest := 0
	for _, b := range bookings {
		seq, err := strconv.Atoi(strings.TrimPrefix(b.ID, "BK"))
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest
}
