// Package mapping translates Python import names into the PyPI distribution
// names that install them. The built-in table covers well-known mismatches
// (cv2 installs as opencv-python, sklearn as scikit-learn); user overrides
// win on conflict and unknown names fall back to themselves.
package mapping

import "strings"

// Resolve maps an import root to a distribution name. Overrides are checked
// first with an exact match, then the built-in table, then the import name
// is returned unchanged. Callers must reduce dotted names to their root
// segment before calling; Resolve does not split.
func Resolve(importName string, overrides map[string]string) string {
	if pkg, ok := overrides[importName]; ok {
		return pkg
	}
	if pkg, ok := builtin[importName]; ok {
		return pkg
	}
	return importName
}

// Normalize returns the PEP 503 comparison form of a distribution name:
// lowercase with underscores and dots collapsed to hyphens. Rendering keeps
// canonical casing; Normalize is for equality and dedup keys only.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	return name
}

// builtin holds curated import-name to distribution-name entries in
// canonical PyPI casing. Identity entries are kept where the canonical
// casing differs from the import name (flask installs as Flask).
var builtin = map[string]string{
	// Imaging and vision
	"cv2":              "opencv-python",
	"PIL":              "Pillow",
	"skimage":          "scikit-image",
	"imageio":          "imageio",
	"pytesseract":      "pytesseract",
	"face_recognition": "face-recognition",
	"moviepy":          "moviepy",

	// Scientific computing and ML
	"sklearn":      "scikit-learn",
	"scipy":        "scipy",
	"numpy":        "numpy",
	"pandas":       "pandas",
	"mpl_toolkits": "matplotlib",
	"matplotlib":   "matplotlib",
	"statsmodels":  "statsmodels",
	"sympy":        "sympy",
	"networkx":     "networkx",
	"numba":        "numba",
	"joblib":       "joblib",
	"h5py":         "h5py",
	"torch":        "torch",
	"tensorflow":   "tensorflow",
	"keras":        "keras",
	"xgboost":      "xgboost",
	"lightgbm":     "lightgbm",
	"nltk":         "nltk",
	"spacy":        "spacy",
	"gensim":       "gensim",
	"transformers": "transformers",

	// Web frameworks and servers
	"flask":            "Flask",
	"flask_sqlalchemy": "Flask-SQLAlchemy",
	"flask_cors":       "Flask-Cors",
	"flask_login":      "Flask-Login",
	"flask_wtf":        "Flask-WTF",
	"flask_migrate":    "Flask-Migrate",
	"flask_restful":    "Flask-RESTful",
	"django":           "Django",
	"rest_framework":   "djangorestframework",
	"corsheaders":      "django-cors-headers",
	"allauth":          "django-allauth",
	"debug_toolbar":    "django-debug-toolbar",
	"crispy_forms":     "django-crispy-forms",
	"environ":          "django-environ",
	"dj_database_url":  "dj-database-url",
	"fastapi":          "fastapi",
	"starlette":        "starlette",
	"uvicorn":          "uvicorn",
	"gunicorn":         "gunicorn",
	"werkzeug":         "Werkzeug",
	"jinja2":           "Jinja2",
	"markupsafe":       "MarkupSafe",
	"itsdangerous":     "itsdangerous",
	"channels":         "channels",
	"tornado":          "tornado",
	"aiohttp":          "aiohttp",
	"httpx":            "httpx",
	"twisted":          "Twisted",
	"scrapy":           "Scrapy",

	// Databases and storage
	"MySQLdb":       "mysqlclient",
	"mysql":         "mysql-connector-python",
	"pymysql":       "PyMySQL",
	"psycopg2":      "psycopg2-binary",
	"pymongo":       "pymongo",
	"bson":          "pymongo",
	"gridfs":        "pymongo",
	"redis":         "redis",
	"sqlalchemy":    "SQLAlchemy",
	"alembic":       "alembic",
	"cassandra":     "cassandra-driver",
	"elasticsearch": "elasticsearch",
	"peewee":        "peewee",
	"memcache":      "python-memcached",

	// Messaging and tasks
	"celery":          "celery",
	"kafka":           "kafka-python",
	"confluent_kafka": "confluent-kafka",
	"pika":            "pika",
	"paho":            "paho-mqtt",
	"zmq":             "pyzmq",
	"grpc":            "grpcio",

	// Data formats and parsing
	"yaml":       "PyYAML",
	"bs4":        "beautifulsoup4",
	"lxml":       "lxml",
	"openpyxl":   "openpyxl",
	"xlrd":       "xlrd",
	"xlsxwriter": "XlsxWriter",
	"docx":       "python-docx",
	"pptx":       "python-pptx",
	"PyPDF2":     "PyPDF2",
	"fitz":       "PyMuPDF",
	"markdown":   "Markdown",
	"ujson":      "ujson",
	"msgpack":    "msgpack",
	"toml":       "toml",
	"tomli":      "tomli",
	"ruamel":     "ruamel.yaml",
	"snappy":     "python-snappy",
	"zstd":       "zstandard",
	"magic":      "python-magic",
	"chardet":    "chardet",

	// Cloud and infrastructure
	"boto3":           "boto3",
	"botocore":        "botocore",
	"docker":          "docker",
	"kubernetes":      "kubernetes",
	"googleapiclient": "google-api-python-client",
	"airflow":         "apache-airflow",

	// HTTP and networking
	"requests":          "requests",
	"requests_oauthlib": "requests-oauthlib",
	"urllib3":           "urllib3",
	"websocket":         "websocket-client",
	"websockets":        "websockets",
	"oauthlib":          "oauthlib",
	"serial":            "pyserial",
	"usb":               "pyusb",

	// Auth and crypto
	"jwt":          "PyJWT",
	"jose":         "python-jose",
	"cryptography": "cryptography",
	"Crypto":       "pycryptodome",
	"nacl":         "PyNaCl",
	"OpenSSL":      "pyOpenSSL",
	"bcrypt":       "bcrypt",
	"passlib":      "passlib",
	"ldap":         "python-ldap",

	// Testing
	"pytest":     "pytest",
	"nose":       "nose",
	"mock":       "mock",
	"hypothesis": "hypothesis",
	"faker":      "Faker",
	"freezegun":  "freezegun",
	"responses":  "responses",
	"tox":        "tox",

	// CLI, config and logging
	"click":             "click",
	"dotenv":            "python-dotenv",
	"configargparse":    "ConfigArgParse",
	"tqdm":              "tqdm",
	"colorama":          "colorama",
	"rich":              "rich",
	"loguru":            "loguru",
	"structlog":         "structlog",
	"prettytable":       "prettytable",
	"sentry_sdk":        "sentry-sdk",
	"prometheus_client": "prometheus-client",

	// Desktop and graphics
	"wx":      "wxPython",
	"gi":      "PyGObject",
	"OpenGL":  "PyOpenGL",
	"pygame":  "pygame",
	"kivy":    "Kivy",
	"PyQt5":   "PyQt5",
	"PyQt6":   "PyQt6",
	"PySide2": "PySide2",
	"PySide6": "PySide6",

	// Integrations
	"github":             "PyGithub",
	"gitlab":             "python-gitlab",
	"git":                "GitPython",
	"telegram":           "python-telegram-bot",
	"discord":            "discord.py",
	"slugify":            "python-slugify",
	"dateutil":           "python-dateutil",
	"pytz":               "pytz",
	"arrow":              "arrow",
	"pendulum":           "pendulum",
	"Levenshtein":        "python-Levenshtein",
	"fuzzywuzzy":         "fuzzywuzzy",
	"speech_recognition": "SpeechRecognition",

	// Packaging and typing
	"pkg_resources":     "setuptools",
	"setuptools":        "setuptools",
	"typing_extensions": "typing-extensions",
	"attr":              "attrs",
	"attrs":             "attrs",
	"pydantic":          "pydantic",
	"apscheduler":       "APScheduler",
	"win32api":          "pywin32",
	"win32com":          "pywin32",
	"win32con":          "pywin32",
}

// BuiltinSize returns the number of curated entries. Exposed for tests.
func BuiltinSize() int {
	return len(builtin)
}
