package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/poll"
	"github.com/trezcool/darasa/core/section"
	"github.com/trezcool/darasa/core/task"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user         *userTable
		section      *sectionTable
		task         *taskTable
		announcement *announcementTable
		poll         *pollTable
		notification *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	sectionTable struct {
		sync.RWMutex
		table       map[string]*section.Section
		enrollments []section.Enrollment
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*task.Task
	}

	announcementTable struct {
		sync.RWMutex
		table map[string]*announcement.Announcement
	}

	pollTable struct {
		sync.RWMutex
		table map[string]*poll.Poll
		votes map[string]map[string]string // pollID -> studentID -> optionID
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		section:      &sectionTable{table: make(map[string]*section.Section)},
		task:         &taskTable{table: make(map[string]*task.Task)},
		announcement: &announcementTable{table: make(map[string]*announcement.Announcement)},
		poll:         &pollTable{table: make(map[string]*poll.Poll), votes: make(map[string]map[string]string)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
