package main

import (
	"fmt"
	"time"

	"github.com/pegasusheavy/go-assembler/assembler"
)

// =============================================================================
// Domain Interfaces
// =============================================================================

type Logger interface {
	Log(message string)
	LogError(message string)
}

type Database interface {
	Query(sql string) ([]map[string]any, error)
	Close() error
}

type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

type UserRepository interface {
	FindByID(id int) (*User, error)
	FindAll() ([]*User, error)
}

type UserService interface {
	GetUser(id int) (*User, error)
	ListUsers() ([]*User, error)
}

// =============================================================================
// Domain Models
// =============================================================================

type User struct {
	ID    int
	Name  string
	Email string
}

// =============================================================================
// Implementations
// =============================================================================

type ConsoleLogger struct {
	prefix string
}

func (l *ConsoleLogger) Log(message string) {
	fmt.Printf("%s %s INFO: %s\n", l.prefix, time.Now().Format("15:04:05"), message)
}

func (l *ConsoleLogger) LogError(message string) {
	fmt.Printf("%s %s ERROR: %s\n", l.prefix, time.Now().Format("15:04:05"), message)
}

type PostgresDatabase struct {
	logger Logger
}

func (db *PostgresDatabase) Query(sql string) ([]map[string]any, error) {
	db.logger.Log(fmt.Sprintf("executing query: %s", sql))
	return []map[string]any{
		{"id": 1, "name": "Alice", "email": "alice@example.com"},
		{"id": 2, "name": "Bob", "email": "bob@example.com"},
	}, nil
}

func (db *PostgresDatabase) Close() error {
	db.logger.Log("closing database connection")
	return nil
}

// OnDispose releases the simulated connection when the build is torn down.
func (db *PostgresDatabase) OnDispose() error {
	return db.Close()
}

type InMemoryCache struct {
	logger Logger
	data   map[string]any
}

func (c *InMemoryCache) Get(key string) (any, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *InMemoryCache) Set(key string, value any, ttl time.Duration) {
	c.data[key] = value
}

// OnInit runs once the whole graph's constructors have returned, receiving
// this unit's effective configuration.
func (c *InMemoryCache) OnInit(cfg assembler.Configuration) error {
	c.logger.Log("cache warmed up")
	return nil
}

type DefaultUserRepository struct {
	db     Database
	cache  Cache
	logger Logger
}

func (r *DefaultUserRepository) FindByID(id int) (*User, error) {
	cacheKey := fmt.Sprintf("user:%d", id)

	if cached, ok := r.cache.Get(cacheKey); ok {
		r.logger.Log(fmt.Sprintf("cache hit for user %d", id))
		return cached.(*User), nil
	}

	r.logger.Log(fmt.Sprintf("cache miss for user %d, querying database", id))
	results, err := r.db.Query(fmt.Sprintf("select * from users where id = %d", id))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("user %d not found", id)
	}

	user := &User{
		ID:    results[0]["id"].(int),
		Name:  results[0]["name"].(string),
		Email: results[0]["email"].(string),
	}
	r.cache.Set(cacheKey, user, 5*time.Minute)
	return user, nil
}

func (r *DefaultUserRepository) FindAll() ([]*User, error) {
	results, err := r.db.Query("select * from users")
	if err != nil {
		return nil, err
	}
	users := make([]*User, len(results))
	for i, row := range results {
		users[i] = &User{ID: row["id"].(int), Name: row["name"].(string), Email: row["email"].(string)}
	}
	return users, nil
}

type DefaultUserService struct {
	repo   UserRepository
	logger Logger
}

func (s *DefaultUserService) GetUser(id int) (*User, error) {
	s.logger.Log(fmt.Sprintf("getting user %d", id))
	return s.repo.FindByID(id)
}

func (s *DefaultUserService) ListUsers() ([]*User, error) {
	s.logger.Log("listing all users")
	return s.repo.FindAll()
}

// =============================================================================
// Registration
// =============================================================================

func init() {
	mustAssemblage(assembler.Assemblage[ConsoleLogger](assembler.Definition{}, func() *ConsoleLogger {
		return &ConsoleLogger{prefix: "[app]"}
	}))

	mustAssemblage(assembler.Assemblage[PostgresDatabase](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.InjectAs[Logger, ConsoleLogger]()},
	}, func(logger Logger) *PostgresDatabase {
		return &PostgresDatabase{logger: logger}
	}))

	mustAssemblage(assembler.Assemblage[InMemoryCache](assembler.Definition{
		Inject: []assembler.InjectionTuple{assembler.InjectAs[Logger, ConsoleLogger]()},
	}, func(logger Logger) *InMemoryCache {
		return &InMemoryCache{logger: logger, data: make(map[string]any)}
	}))

	mustAssemblage(assembler.Assemblage[DefaultUserRepository](assembler.Definition{
		Inject: []assembler.InjectionTuple{
			assembler.InjectAs[Database, PostgresDatabase](),
			assembler.InjectAs[Cache, InMemoryCache](),
			assembler.InjectAs[Logger, ConsoleLogger](),
		},
	}, func(db Database, cache Cache, logger Logger) *DefaultUserRepository {
		return &DefaultUserRepository{db: db, cache: cache, logger: logger}
	}))

	mustAssemblage(assembler.Assemblage[DefaultUserService](assembler.Definition{
		Inject: []assembler.InjectionTuple{
			assembler.InjectAs[UserRepository, DefaultUserRepository](),
			assembler.InjectAs[Logger, ConsoleLogger](),
		},
	}, func(repo UserRepository, logger Logger) *DefaultUserService {
		return &DefaultUserService{repo: repo, logger: logger}
	}))
}

func mustAssemblage(err error) {
	if err != nil {
		panic(err)
	}
}

// =============================================================================
// Application Bootstrap
// =============================================================================

func main() {
	fmt.Println("assembler demo: building a *DefaultUserService")
	fmt.Println()

	userService, err := assembler.Build[*DefaultUserService]()
	if err != nil {
		fmt.Printf("build failed: %v\n", err)
		return
	}

	var svc UserService = userService

	users, err := svc.ListUsers()
	if err != nil {
		fmt.Printf("failed to list users: %v\n", err)
		return
	}

	fmt.Println("\n--- results ---")
	for _, user := range users {
		fmt.Printf("  -> user: %s (%s)\n", user.Name, user.Email)
	}
}
