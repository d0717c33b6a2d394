package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ikkim/catalogo-backend/config"
	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/internal/db"
	"github.com/ikkim/catalogo-backend/internal/storage"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const adminPasswordEnv = "CATALOGO_ADMIN_PASSWORD"

// openDBFunc returns a migrated connection and its close func.
type openDBFunc func() (*gorm.DB, func(), error)

func connectDB() (*gorm.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db.GetDB(), func() { _ = db.Close() }, nil
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(connectDB)
}

func newRootCommandWith(open openDBFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Herramientas de operación del catálogo",
		SilenceUsage:  true,
	}
	root.AddCommand(
		newImportCommand(open),
		newExportCommand(open),
		newCreateAdminCommand(open),
		newAddCategoryCommand(open),
	)
	return root
}

func newImportCommand(open openDBFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "import <archivo.csv|archivo.xlsx>",
		Short: "Importa productos y variantes desde un CSV o XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := newImportExportService(conn).Import(filepath.Base(args[0]), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Importadas: %d, con error: %d\n", result.OK, result.Fail)
			for _, msg := range result.Errors {
				fmt.Fprintln(out, "  "+msg)
			}
			return nil
		},
	}
}

func newExportCommand(open openDBFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "export <archivo.csv|archivo.xlsx>",
		Short: "Exporta el catálogo; el formato sale de la extensión",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.ToLower(filepath.Ext(args[0]))
			if ext != ".csv" && ext != ".xlsx" {
				return errors.New("the export file must end in .csv or .xlsx")
			}

			conn, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			defer f.Close()

			svc := newImportExportService(conn)
			if ext == ".xlsx" {
				err = svc.ExportXLSX(f)
			} else {
				err = svc.ExportCSV(f)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catálogo exportado a %s\n", args[0])
			return nil
		},
	}
}

func newCreateAdminCommand(open openDBFunc) *cobra.Command {
	var email, name, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario del panel; la contraseña se lee de " + adminPasswordEnv,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv(adminPasswordEnv)
			if password == "" {
				return fmt.Errorf("%s is not set", adminPasswordEnv)
			}

			conn, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()

			authService := service.NewAuthService(
				repository.NewUserRepository(conn),
				service.NewMemoryStore(),
				service.NewAdminPolicy(nil, nil),
				"",
				0,
			)
			user, err := authService.CreateUser(email, password, name, model.UserRole(strings.ToLower(role)))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Usuario %s creado con rol %s (id %d)\n", user.Email, user.Role, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email del usuario")
	cmd.Flags().StringVar(&name, "name", "", "nombre visible")
	cmd.Flags().StringVar(&role, "role", string(model.RoleOwner), "rol: owner, editor o viewer")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAddCategoryCommand(open openDBFunc) *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "add-category <nombre>",
		Short: "Crea una categoría",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, closeDB, err := open()
			if err != nil {
				return err
			}
			defer closeDB()

			productService := service.NewProductService(
				conn,
				repository.NewProductRepository(conn),
				repository.NewVariantRepository(conn),
				repository.NewImageRepository(conn),
				repository.NewCategoryRepository(conn),
				repository.NewCatalogConfigRepository(conn),
				storage.NewMemoryStorage(""),
			)
			category, err := productService.CreateCategory(args[0], slug)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categoría %s creada (slug %s)\n", category.Name, category.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "slug; por defecto se deriva del nombre")
	return cmd
}

func newImportExportService(conn *gorm.DB) service.ImportExportService {
	return service.NewImportExportService(
		conn,
		repository.NewProductRepository(conn),
		repository.NewVariantRepository(conn),
	)
}
