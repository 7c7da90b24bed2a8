package postgres

import (
	"github.com/nkosi-ncube/CareIQ/internal/repository"
)

type userRepository struct {
	BaseRepository
}

type consultationRepository struct {
	BaseRepository
}

type alertRepository struct {
	BaseRepository
}

type diagnosticTestRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func NewConsultationRepository(base BaseRepository) repository.ConsultationRepository {
	return &consultationRepository{base}
}

func NewAlertRepository(base BaseRepository) repository.AlertRepository {
	return &alertRepository{base}
}

func NewDiagnosticTestRepository(base BaseRepository) repository.DiagnosticTestRepository {
	return &diagnosticTestRepository{base}
}
