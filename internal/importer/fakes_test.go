package importer

import (
	"context"
	"database/sql"
	"fmt"

	"employee-import/internal/domain"
)

// fakeUsersRepo 内存版UsersRepository，记录调用供断言
type fakeUsersRepo struct {
	existing  map[string]string // employee_no -> user_id
	created   []*domain.PersonAggregate
	updated   map[string]*domain.PersonAggregate
	errOn     map[string]error // 指定员工编号的查找返回该错误
	createErr error
	updateErr error
	nextID    int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		existing: make(map[string]string),
		updated:  make(map[string]*domain.PersonAggregate),
		errOn:    make(map[string]error),
	}
}

func (f *fakeUsersRepo) FindUserIDByEmployeeNo(ctx context.Context, employeeNo string) (string, error) {
	if err, ok := f.errOn[employeeNo]; ok {
		return "", err
	}
	if id, ok := f.existing[employeeNo]; ok {
		return id, nil
	}
	return "", sql.ErrNoRows
}

func (f *fakeUsersRepo) CreateAggregate(ctx context.Context, agg *domain.PersonAggregate) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("user-%d", f.nextID)
	f.existing[agg.User.EmployeeNo] = id
	f.created = append(f.created, agg)
	return id, nil
}

func (f *fakeUsersRepo) UpdateAggregate(ctx context.Context, userID string, agg *domain.PersonAggregate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated[userID] = agg
	return nil
}

// fakeNotifier 记录已发送的欢迎通知
type fakeNotifier struct {
	sent    []sentWelcome
	sendErr error
}

type sentWelcome struct {
	Email     string
	FirstName string
}

func (f *fakeNotifier) SendWelcome(ctx context.Context, email string, firstName string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentWelcome{Email: email, FirstName: firstName})
	return nil
}
