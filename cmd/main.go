package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/omnigateway/api-usuario/internal/auth"
	"github.com/omnigateway/api-usuario/internal/carteira"
	"github.com/omnigateway/api-usuario/internal/cnpj"
	"github.com/omnigateway/api-usuario/internal/config"
	"github.com/omnigateway/api-usuario/internal/favorecido"
	"github.com/omnigateway/api-usuario/internal/logger"
	"github.com/omnigateway/api-usuario/internal/manutencao"
	"github.com/omnigateway/api-usuario/internal/provedor"
	"github.com/omnigateway/api-usuario/internal/tarifa"
	"github.com/omnigateway/api-usuario/internal/usuario"
	"github.com/omnigateway/api-usuario/internal/utils/db"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zapLog, err := logger.Init(cfg.LogLevel)
	if err != nil {
		log.Fatal("erro ao iniciar logger:", err)
	}
	defer func() { _ = zapLog.Sync() }()

	database, err := db.GetDB(cfg.DB)
	if err != nil {
		zapLog.Fatal("erro ao conectar no banco", zap.Error(err))
	}

	// AutoMigrate para todos os modelos
	if err := database.AutoMigrate(
		&usuario.Usuario{},
		&tarifa.Tarifa{},
		&provedor.Provider{},
		&manutencao.ModoManutencao{},
		&favorecido.Favorecido{},
	); err != nil {
		zapLog.Fatal("erro no AutoMigrate", zap.Error(err))
	}

	// Clientes dos serviços vizinhos
	authCliente := auth.NovoCliente(cfg.AuthServiceURL, cfg.HTTPClientTimeout)
	walletCliente := carteira.NewClient(cfg.WalletServiceURL, cfg.HTTPClientTimeout, zapLog)
	cnpjCliente := cnpj.NewClient(cfg.CNPJAPIURL, cfg.HTTPClientTimeout)

	// Handlers
	usuarioHandler := usuario.NewHandler(database, zapLog, walletCliente, cnpjCliente)
	tarifaHandler := tarifa.NewHandler(database, zapLog)
	provedorHandler := provedor.NewHandler(database, zapLog)
	manutencaoHandler := manutencao.NewHandler(database, zapLog)
	favorecidoHandler := favorecido.NewHandler(database, zapLog)
	authHandler := auth.NewHandler(zapLog)

	autenticado := auth.MiddlewareAutenticacao(authCliente)
	admin := auth.MiddlewareAdmin

	// Router
	r := mux.NewRouter()

	// Rotas públicas
	r.HandleFunc("/auth/login", authHandler.LoginAdmin).Methods("POST")
	r.HandleFunc("/maintenance/status", manutencaoHandler.StatusPublico).Methods("GET")
	r.HandleFunc("/users", usuarioHandler.CriarUsuario).Methods("POST")
	r.HandleFunc("/operators", usuarioHandler.RegistrarOperador).Methods("POST")

	// Rotas internas, consumidas pelos serviços irmãos na rede interna
	r.HandleFunc("/internal/validate-credentials", usuarioHandler.ValidarCredenciaisInterno).Methods("POST")
	r.HandleFunc("/internal/users/{id}/fees", tarifaHandler.ObterTarifasInterno).Methods("GET")

	// Rotas do usuário autenticado
	r.Handle("/users/{id}", autenticado(http.HandlerFunc(usuarioHandler.BuscarPorID))).Methods("GET")
	r.Handle("/users/{id}/config", autenticado(http.HandlerFunc(usuarioHandler.AtualizarConfig))).Methods("PATCH")
	r.Handle("/users/{id}/credentials", autenticado(http.HandlerFunc(usuarioHandler.ObterCredenciais))).Methods("GET")
	r.Handle("/users/{id}/credentials/rotate", autenticado(http.HandlerFunc(usuarioHandler.RotacionarCredenciais))).Methods("POST")

	// Favorecidos Pix: pela rota com id ou pelo par app_id/segredo nos headers
	r.Handle("/users/{id}/beneficiaries", autenticado(http.HandlerFunc(favorecidoHandler.Criar))).Methods("POST")
	r.Handle("/users/{id}/beneficiaries", autenticado(http.HandlerFunc(favorecidoHandler.Listar))).Methods("GET")
	r.Handle("/users/{id}/beneficiaries/{bid}", autenticado(http.HandlerFunc(favorecidoHandler.Buscar))).Methods("GET")
	r.Handle("/users/{id}/beneficiaries/{bid}", autenticado(http.HandlerFunc(favorecidoHandler.Atualizar))).Methods("PUT")
	r.Handle("/users/{id}/beneficiaries/{bid}", autenticado(http.HandlerFunc(favorecidoHandler.Remover))).Methods("DELETE")
	r.HandleFunc("/beneficiaries", favorecidoHandler.Criar).Methods("POST")
	r.HandleFunc("/beneficiaries", favorecidoHandler.Listar).Methods("GET")

	// Rotas administrativas
	r.Handle("/users", admin(http.HandlerFunc(usuarioHandler.ListarUsuarios))).Methods("GET")
	r.Handle("/users/{id}/doc-status", admin(http.HandlerFunc(usuarioHandler.AtualizarDocStatus))).Methods("PATCH")
	r.Handle("/users/{id}/provider", admin(http.HandlerFunc(provedorHandler.AtribuirAoUsuario))).Methods("PATCH")
	r.Handle("/users/{id}/fees", admin(http.HandlerFunc(tarifaHandler.DefinirTarifas))).Methods("PATCH")
	r.Handle("/users/{id}/treasury", admin(http.HandlerFunc(usuarioHandler.DefinirTreasury))).Methods("PATCH")

	r.Handle("/admin/providers", admin(http.HandlerFunc(provedorHandler.CriarProvider))).Methods("POST")
	r.Handle("/admin/providers", admin(http.HandlerFunc(provedorHandler.ListarProviders))).Methods("GET")
	r.Handle("/admin/providers/{id}", admin(http.HandlerFunc(provedorHandler.BuscarProvider))).Methods("GET")
	r.Handle("/admin/providers/{id}", admin(http.HandlerFunc(provedorHandler.AtualizarProvider))).Methods("PUT")
	r.Handle("/admin/providers/{id}", admin(http.HandlerFunc(provedorHandler.DeletarProvider))).Methods("DELETE")

	r.Handle("/settings/maintenance", admin(http.HandlerFunc(manutencaoHandler.ObterStatus))).Methods("GET")
	r.Handle("/settings/maintenance", admin(http.HandlerFunc(manutencaoHandler.Definir))).Methods("PATCH")

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "app_id", "app_secret"},
	}).Handler(logger.MiddlewareRequisicao(zapLog)(r))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zapLog.Info("servidor rodando", zap.String("porta", cfg.HTTPPort))
	if err := srv.ListenAndServe(); err != nil {
		zapLog.Fatal("servidor encerrou", zap.Error(err))
	}
}
