package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// UserCatalog resolves user ids to catalog records.
type UserCatalog interface {
	FindUserByID(id string) (domain.User, bool)
}

// CategoryCatalog resolves sub-category ids within a category.
type CategoryCatalog interface {
	FindSubCategory(categoryName, subCategoryID string) (domain.SubCategory, bool)
}

// File is the on-disk YAML layout of a catalog.
type File struct {
	Users      []domain.User     `yaml:"users"`
	Categories []domain.Category `yaml:"categories"`
}

// Catalog is an in-memory, read-only lookup of users and categories. The
// whole content can be swapped atomically by Replace, which is how file
// reloads are applied.
type Catalog struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	categories []domain.Category
}

// New builds a catalog from explicit records.
func New(users []domain.User, categories []domain.Category) *Catalog {
	c := &Catalog{}
	c.set(users, categories)
	return c
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return New(file.Users, file.Categories), nil
}

// LoadFile reads and parses the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func (f File) validate() error {
	seen := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		if strings.TrimSpace(u.ID) == "" {
			return fmt.Errorf("catalog user #%d has no id", i+1)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("catalog user %s defined twice", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	for _, cat := range f.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("catalog category without name")
		}
	}
	return nil
}

// Replace swaps in the content of other.
func (c *Catalog) Replace(other *Catalog) {
	other.mu.RLock()
	users := make([]domain.User, 0, len(other.users))
	for _, u := range other.users {
		users = append(users, u)
	}
	categories := other.categories
	other.mu.RUnlock()

	c.set(users, categories)
}

func (c *Catalog) set(users []domain.User, categories []domain.Category) {
	index := make(map[string]domain.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	cats := make([]domain.Category, len(categories))
	copy(cats, categories)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = index
	c.categories = cats
}

// FindUserByID implements UserCatalog.
func (c *Catalog) FindUserByID(id string) (domain.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	return u, ok
}

// Users returns every user ordered by id.
func (c *Catalog) Users() []domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.User, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindSubCategory implements CategoryCatalog. Category names match
// case-insensitively; an empty category name searches every category.
func (c *Catalog) FindSubCategory(categoryName, subCategoryID string) (domain.SubCategory, bool) {
	if subCategoryID == "" {
		return domain.SubCategory{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if categoryName != "" && !strings.EqualFold(cat.Name, categoryName) {
			continue
		}
		for _, sub := range cat.SubCategories {
			if sub.ID == subCategoryID {
				return sub, true
			}
		}
	}
	return domain.SubCategory{}, false
}

// Categories returns a copy of the category list.
func (c *Catalog) Categories() []domain.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}
