package model

type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses - колонки доски в порядке слева направо
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

func (s Status) index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status one step forward. ok is false at done or for an unknown status.
func (s Status) Next() (Status, bool) {
	i := s.index()
	if i < 0 || i == len(Statuses)-1 {
		return s, false
	}
	return Statuses[i+1], true
}

// Prev returns the status one step back. ok is false at todo or for an unknown status.
func (s Status) Prev() (Status, bool) {
	i := s.index()
	if i <= 0 {
		return s, false
	}
	return Statuses[i-1], true
}

func (s Status) CanAdvance() bool {
	_, ok := s.Next()
	return ok
}

func (s Status) CanRetreat() bool {
	_, ok := s.Prev()
	return ok
}

type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status Status `json:"status"`
}

// Document is the wire envelope of the tasks resource.
type Document struct {
	Tasks []Task `json:"tasks"`
}
