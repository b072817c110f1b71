package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"tasky/apperr"
	"tasky/model"
)

type SeedSubTask struct {
	Title string `yaml:"title" validate:"required"`
	Date  string `yaml:"date" validate:"required"`
	Tag   string `yaml:"tag"`
}

type SeedActivity struct {
	Type     string `yaml:"type" validate:"required"`
	Activity string `yaml:"activity"`
}

type SeedTask struct {
	Title      string         `yaml:"title" validate:"required"`
	Date       string         `yaml:"date" validate:"required"`
	Priority   string         `yaml:"priority" validate:"required,oneof=low normal medium high"`
	Stage      string         `yaml:"stage"`
	Team       []string       `yaml:"team"`
	Assets     []string       `yaml:"assets"`
	SubTasks   []SeedSubTask  `yaml:"subTasks" validate:"dive"`
	Activities []SeedActivity `yaml:"activities" validate:"dive"`
	IsTrashed  bool           `yaml:"isTrashed"`
}

// SeedFile is the YAML document accepted by the seed command.
type SeedFile struct {
	Tasks []SeedTask `yaml:"tasks" validate:"required,dive"`
}

var validate = validator.New()

// LoadSeedFile reads and validates a seed document.
func LoadSeedFile(fs afero.Fs, path string) (*SeedFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, seedValidationError(err)
	}
	return &file, nil
}

func seedValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperr.Validation("seed", "%v", err)
	}
	var msgs []string
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", e.Namespace(), e.Tag()))
	}
	return apperr.Validation(verrs[0].Namespace(), "%s", strings.Join(msgs, "; "))
}

// Seed creates every task of file through the lifecycle operations and returns
// the number of tasks created.
func (s *TaskService) Seed(ctx context.Context, actor string, file *SeedFile) (int, error) {
	created := 0
	for i, st := range file.Tasks {
		task, err := s.seedTask(ctx, actor, st)
		if err != nil {
			return created, fmt.Errorf("seed task %d (%s): %w", i, st.Title, err)
		}
		created++
		s.logger.Debug("seeded task", slog.String("id", task.ID), slog.String("title", task.Title))
	}
	return created, nil
}

func (s *TaskService) seedTask(ctx context.Context, actor string, st SeedTask) (*model.Task, error) {
	date, err := model.ParseDate("date", st.Date)
	if err != nil {
		return nil, err
	}
	priority, err := model.ParsePriority(st.Priority)
	if err != nil {
		return nil, err
	}
	var stage model.Stage
	if st.Stage != "" {
		if stage, err = model.ParseStage(st.Stage); err != nil {
			return nil, err
		}
	}

	task, err := s.CreateTask(ctx, actor, CreateTaskInput{
		Title:    st.Title,
		Date:     date,
		Priority: priority,
		Stage:    stage,
		Team:     st.Team,
		Assets:   st.Assets,
	})
	if err != nil {
		return nil, err
	}

	for _, sub := range st.SubTasks {
		subDate, err := model.ParseDate("subTasks.date", sub.Date)
		if err != nil {
			return nil, err
		}
		if _, err := s.AddSubtask(ctx, task.ID, model.SubTask{Title: sub.Title, Date: subDate, Tag: sub.Tag}); err != nil {
			return nil, err
		}
	}
	for _, a := range st.Activities {
		typ, err := model.ParseActivityType(a.Type)
		if err != nil {
			return nil, err
		}
		if _, err := s.PostActivity(ctx, task.ID, actor, PostActivityInput{Type: typ, Activity: a.Activity}); err != nil {
			return nil, err
		}
	}
	if st.IsTrashed {
		if _, err := s.TrashTask(ctx, task.ID); err != nil {
			return nil, err
		}
	}
	return task, nil
}
